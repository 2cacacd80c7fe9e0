// Package normalization maps loosely written configuration strings onto typed enums.
package normalization

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Normalizer resolves user spellings of an enum. Lookups ignore case and
// surrounding whitespace, and treat '-' and '_' alike.
type Normalizer[T comparable] struct {
	spellings map[string]T
	fallback  T
}

// NewNormalizer indexes values by spelling. Several spellings may share a value,
// as "warn" and "warning" do.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{spellings: make(map[string]T, len(values)), fallback: fallback}
	for spelling, v := range values {
		n.spellings[key(spelling)] = v
	}
	return n
}

// Normalize returns the value spelled by raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.spellings[key(raw)]; ok {
		return v
	}
	return n.fallback
}

// NormalizeWithError is Normalize that rejects unknown spellings. Blank input
// still yields the fallback.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	k := key(raw)
	if k == "" {
		return n.fallback, nil
	}
	v, ok := n.spellings[k]
	if !ok {
		var zero T
		return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.ValidKeys(), ", "))
	}
	return v, nil
}

// ValidKeys lists the accepted spellings, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	return slices.Sorted(maps.Keys(n.spellings))
}

func key(s string) string {
	return strings.ReplaceAll(cases.Fold().String(strings.TrimSpace(s)), "-", "_")
}
