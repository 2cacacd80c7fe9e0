package lint

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Rule identifiers, also used in [rules] disable.
const (
	RuleFilename           = "filename"
	RuleFrontmatter        = "frontmatter"
	RuleHeadingIncrement   = "heading-increment"
	RuleTrailingWhitespace = "trailing-whitespace"
	RuleLineLength         = "line-length"
	RuleSpelling           = "spelling"
	RuleFingerprint        = "fingerprint"
)

// AllRules lists every known rule identifier.
var AllRules = []string{
	RuleFilename, RuleFrontmatter, RuleHeadingIncrement, RuleTrailingWhitespace,
	RuleLineLength, RuleSpelling, RuleFingerprint,
}

var (
	validNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	urlPattern       = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)
	linkDestPattern  = regexp.MustCompile(`\]\([^)]*\)`)
	atxHeading       = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]|$)`)
)

// FilenameRule requires lowercase file names without spaces so URLs are predictable.
type FilenameRule struct{}

// Name returns the rule identifier.
func (r *FilenameRule) Name() string { return RuleFilename }

// AppliesTo returns true for all documentation and asset files.
func (r *FilenameRule) AppliesTo(filePath string) bool {
	return (IsDocFile(filePath) || IsAssetFile(filePath)) && !isConventionalFile(filepath.Base(filePath))
}

// Check validates the base name of the file.
func (r *FilenameRule) Check(src *Source) []Issue {
	name := filepath.Base(src.Path)
	if validNamePattern.MatchString(name) {
		return nil
	}
	suggested := strings.ToLower(strings.Join(strings.Fields(name), "-"))
	msg := "Filename must be lowercase letters, digits, '.', '-' or '_'"
	switch {
	case strings.ContainsAny(name, " \t"):
		msg = "Filename contains whitespace"
	case name != strings.ToLower(name):
		msg = "Filename contains uppercase letters"
	}
	return []Issue{{
		FilePath: src.Path,
		Severity: SeverityError,
		Rule:     r.Name(),
		Message:  msg,
		Fix:      fmt.Sprintf("Rename to %s and update links to it", suggested),
	}}
}

// isConventionalFile reports repository files that keep their customary upper-case names.
func isConventionalFile(filename string) bool {
	switch strings.ToUpper(filename) {
	case "README.MD", "CONTRIBUTING.MD", "CHANGELOG.MD", "LICENSE.MD", "CODE_OF_CONDUCT.MD", "SECURITY.MD":
		return true
	}
	return false
}

// HeadingIncrementRule flags headings that skip a level, e.g. "#" followed by "###".
type HeadingIncrementRule struct{}

// Name returns the rule identifier.
func (r *HeadingIncrementRule) Name() string { return RuleHeadingIncrement }

// AppliesTo returns true for documentation files.
func (r *HeadingIncrementRule) AppliesTo(filePath string) bool { return IsDocFile(filePath) }

// Check walks ATX headings outside code blocks.
func (r *HeadingIncrementRule) Check(src *Source) []Issue {
	var issues []Issue
	prev := 0
	for _, l := range src.Lines {
		if l.Front || l.Code {
			continue
		}
		m := atxHeading.FindStringSubmatch(l.Text)
		if m == nil {
			continue
		}
		level := len(m[1])
		if prev > 0 && level > prev+1 {
			issues = append(issues, Issue{
				FilePath: src.Path,
				Severity: SeverityWarning,
				Rule:     r.Name(),
				Line:     l.Num,
				Message:  fmt.Sprintf("Heading level jumps from h%d to h%d", prev, level),
				Fix:      fmt.Sprintf("Use a level %d heading", prev+1),
			})
		}
		prev = level
	}
	return issues
}

// TrailingWhitespaceRule flags spaces and tabs at the end of a line.
type TrailingWhitespaceRule struct{}

// Name returns the rule identifier.
func (r *TrailingWhitespaceRule) Name() string { return RuleTrailingWhitespace }

// AppliesTo returns true for documentation files.
func (r *TrailingWhitespaceRule) AppliesTo(filePath string) bool { return IsDocFile(filePath) }

// Check reports every line with trailing whitespace.
func (r *TrailingWhitespaceRule) Check(src *Source) []Issue {
	var issues []Issue
	for _, l := range src.Lines {
		if trailingWhitespace(l.Text) == 0 {
			continue
		}
		issues = append(issues, Issue{
			FilePath: src.Path,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Line:     l.Num,
			Message:  "Trailing whitespace",
			Fixable:  true,
		})
	}
	return issues
}

func trailingWhitespace(text string) int {
	return len(text) - len(strings.TrimRight(text, " \t"))
}

// LineLengthRule flags long prose lines. Code blocks, tables, headings and lines
// without spaces (long URLs) are exempt.
type LineLengthRule struct {
	Max int
}

// Name returns the rule identifier.
func (r *LineLengthRule) Name() string { return RuleLineLength }

// AppliesTo returns true for documentation files.
func (r *LineLengthRule) AppliesTo(filePath string) bool { return IsDocFile(filePath) }

// Check measures lines in characters, not bytes.
func (r *LineLengthRule) Check(src *Source) []Issue {
	var issues []Issue
	for _, l := range src.Lines {
		if l.Front || l.Code {
			continue
		}
		trimmed := strings.TrimSpace(l.Text)
		if strings.HasPrefix(trimmed, "|") || atxHeading.MatchString(l.Text) || !strings.Contains(trimmed, " ") {
			continue
		}
		n := len([]rune(l.Text))
		if n <= r.Max {
			continue
		}
		issues = append(issues, Issue{
			FilePath: src.Path,
			Severity: SeverityWarning,
			Rule:     r.Name(),
			Line:     l.Num,
			Message:  fmt.Sprintf("Line is %d characters long (max %d)", n, r.Max),
			Fix:      "Wrap the line",
		})
	}
	return issues
}
