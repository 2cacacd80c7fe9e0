package lint

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

// FrontmatterRule checks that front-matter parses and that the keys docsite reads
// have the expected shape.
type FrontmatterRule struct{}

// Name returns the rule identifier.
func (r *FrontmatterRule) Name() string { return RuleFrontmatter }

// AppliesTo returns true for documentation files.
func (r *FrontmatterRule) AppliesTo(filePath string) bool { return IsDocFile(filePath) }

// Check validates title and search.
func (r *FrontmatterRule) Check(src *Source) []Issue {
	issue := func(msg string) Issue {
		return Issue{FilePath: src.Path, Severity: SeverityError, Rule: r.Name(), Line: 1, Message: msg}
	}
	if src.FrontErr != nil {
		return []Issue{issue(fmt.Sprintf("Front-matter does not parse: %v", src.FrontErr))}
	}

	var issues []Issue
	if v, ok := src.Fields["title"]; ok {
		if _, isString := v.(string); !isString {
			issues = append(issues, issue(fmt.Sprintf("title must be a string, got %T", v)))
		}
	}
	if v, ok := src.Fields["search"]; ok {
		issues = append(issues, r.checkSearch(v, issue)...)
	}
	return issues
}

func (r *FrontmatterRule) checkSearch(v any, issue func(string) Issue) []Issue {
	block, ok := v.(map[string]any)
	if !ok {
		return []Issue{issue("search must be a mapping with exclude and boost")}
	}
	keys := make([]string, 0, len(block))
	for k := range block {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var issues []Issue
	for _, k := range keys {
		switch k {
		case "exclude":
			if _, ok := block[k].(bool); !ok {
				issues = append(issues, issue("search.exclude must be true or false"))
			}
		case "boost":
			switch b := block[k].(type) {
			case int, float64:
				if toFloat(b) < 0 {
					issues = append(issues, issue("search.boost must not be negative"))
				}
			default:
				issues = append(issues, issue("search.boost must be a number"))
			}
		default:
			issues = append(issues, issue(fmt.Sprintf("unknown search key %q", k)))
		}
	}
	return issues
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// FingerprintRule verifies a fingerprint stored in front-matter against the content.
// Pages without a fingerprint are not checked.
type FingerprintRule struct{}

// Name returns the rule identifier.
func (r *FingerprintRule) Name() string { return RuleFingerprint }

// AppliesTo returns true for documentation files.
func (r *FingerprintRule) AppliesTo(filePath string) bool { return IsDocFile(filePath) }

// Check recomputes the fingerprint with mdfp.
func (r *FingerprintRule) Check(src *Source) []Issue {
	if src.Fields == nil {
		return nil
	}
	current, ok := src.Fields[frontmatter.FingerprintField]
	if !ok {
		return nil
	}
	issue := Issue{
		FilePath: src.Path,
		Severity: SeverityError,
		Rule:     r.Name(),
		Line:     1,
		Fix:      "Run: docsite lint --fix (regenerates fingerprints)",
		Fixable:  true,
	}
	stored, isString := current.(string)
	if !isString || stored == "" {
		issue.Message = "fingerprint must be a non-empty string"
		return []Issue{issue}
	}
	want, err := frontmatter.ComputeFingerprint(src.Fields, src.Body)
	if err != nil {
		issue.Message = fmt.Sprintf("cannot compute fingerprint: %v", err)
		issue.Fixable = false
		return []Issue{issue}
	}
	if stored != want {
		issue.Message = "fingerprint does not match the page content"
		return []Issue{issue}
	}
	return nil
}
