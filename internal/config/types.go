package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/normalization"
)

// Level is the reporting level of a validation finding.
type Level string

const (
	LevelWarn   Level = "warn"
	LevelInfo   Level = "info"
	LevelIgnore Level = "ignore"
)

var levelNormalizer = normalization.NewNormalizer(map[string]Level{
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"info":    LevelInfo,
	"ignore":  LevelIgnore,
	"off":     LevelIgnore,
}, LevelWarn)

// NormalizeLevel parses a level, empty yields def.
func NormalizeLevel(raw string, def Level) (Level, error) {
	if raw == "" {
		return def, nil
	}
	return levelNormalizer.NormalizeWithError(raw)
}

// CacheBackend selects the external link result cache.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheNATS   CacheBackend = "nats"
)

var cacheNormalizer = normalization.NewNormalizer(map[string]CacheBackend{
	"memory": CacheMemory,
	"mem":    CacheMemory,
	"sqlite": CacheSQLite,
	"nats":   CacheNATS,
}, CacheMemory)

// AliasType decides how version aliases are materialized.
type AliasType string

const (
	AliasRedirect AliasType = "redirect"
	AliasCopy     AliasType = "copy"
)

var aliasNormalizer = normalization.NewNormalizer(map[string]AliasType{
	"redirect": AliasRedirect,
	"copy":     AliasCopy,
}, AliasRedirect)

// OnUndefined decides what the macro engine does with an undefined variable.
type OnUndefined string

const (
	UndefinedStrict OnUndefined = "strict"
	UndefinedKeep   OnUndefined = "keep"
)

var undefinedNormalizer = normalization.NewNormalizer(map[string]OnUndefined{
	"strict": UndefinedStrict,
	"error":  UndefinedStrict,
	"keep":   UndefinedKeep,
}, UndefinedStrict)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var backoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffLinear)

// Duration is a time.Duration decoded from strings such as "1s" or "5m".
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// UnmarshalYAML accepts Go duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"10s\"", value.Line)
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("line %d: duration %q must not be negative", value.Line, raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
