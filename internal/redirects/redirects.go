// Package redirects holds the old-path to new-path mapping of a site. The mapping is
// loaded once per build and never changes afterwards.
package redirects

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Rule maps an old source path to its final target: a page source (optionally with
// a fragment) or an external URL.
type Rule struct {
	From string
	To   string
}

// External reports whether the rule leaves the site.
func (r Rule) External() bool { return config.IsExternalURL(r.To) }

// Set is an immutable collection of rules with chains already collapsed.
type Set struct {
	rules map[string]string
}

// Load normalizes the raw mapping and collapses chains such as a.md -> b.md -> c.md
// to a.md -> c.md. A chain that loops back onto itself is a validation error.
func Load(raw map[string]string) (*Set, error) {
	norm := make(map[string]string, len(raw))
	for from, to := range raw {
		f := cleanSource(from)
		if f == "" {
			return nil, errors.ValidationError("redirect source is empty").Build()
		}
		if prev, dup := norm[f]; dup && prev != strings.TrimSpace(to) {
			return nil, errors.ValidationError("redirect source listed twice").
				WithContext("source", f).Build()
		}
		norm[f] = strings.TrimSpace(to)
	}

	resolved := make(map[string]string, len(norm))
	for _, from := range sortedKeys(norm) {
		to, err := follow(norm, from)
		if err != nil {
			return nil, err
		}
		resolved[from] = to
	}
	return &Set{rules: resolved}, nil
}

func follow(rules map[string]string, from string) (string, error) {
	seen := map[string]bool{from: true}
	chain := []string{from}
	to := rules[from]
	// A fragment survives later hops that do not name their own.
	carried := ""
	for {
		if config.IsExternalURL(to) {
			return to, nil
		}
		p, frag, _ := strings.Cut(to, "#")
		p = cleanSource(p)
		if frag != "" {
			carried = frag
		}
		next, ok := rules[p]
		if !ok {
			if carried != "" {
				return p + "#" + carried, nil
			}
			return p, nil
		}
		chain = append(chain, p)
		if seen[p] {
			return "", errors.ValidationError("redirect cycle").
				WithContext("chain", strings.Join(chain, " -> ")).Build()
		}
		seen[p] = true
		to = next
	}
}

func cleanSource(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "./")
	if s == "" {
		return ""
	}
	return path.Clean(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len is the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Target returns the final target for an old source path.
func (s *Set) Target(from string) (string, bool) {
	if s == nil {
		return "", false
	}
	to, ok := s.rules[cleanSource(from)]
	return to, ok
}

// Rules returns a sorted copy of every rule.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, 0, len(s.rules))
	for _, from := range sortedKeys(s.rules) {
		out = append(out, Rule{From: from, To: s.rules[from]})
	}
	return out
}

// Validate checks the rules against the pages of a build: a source must not be an
// existing page and an internal target must be one. All problems are reported together.
func (s *Set) Validate(corpus *content.Corpus) error {
	var problems []string
	for _, r := range s.Rules() {
		if !content.IsMarkdown(r.From) && !strings.HasSuffix(r.From, ".html") {
			problems = append(problems, fmt.Sprintf("%s: source must be a Markdown or .html path", r.From))
		}
		if _, exists := corpus.Page(r.From); exists {
			problems = append(problems, fmt.Sprintf("%s: source is an existing page", r.From))
		}
		if r.External() {
			continue
		}
		target, _, _ := strings.Cut(r.To, "#")
		if _, ok := corpus.Page(target); !ok {
			problems = append(problems, fmt.Sprintf("%s: target %s does not exist", r.From, r.To))
		}
	}
	if len(problems) > 0 {
		return errors.ValidationError("invalid redirects").WithContext("redirects", problems).Build()
	}
	return nil
}
