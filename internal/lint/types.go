// Package lint checks documentation sources for naming, front-matter, structure and
// spelling problems, and fixes the ones that can be fixed mechanically.
package lint

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// Severity orders findings. Errors break the site or its URLs, warnings should be
// fixed, info is advisory.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{SeverityInfo: "INFO", SeverityWarning: "WARNING", SeverityError: "ERROR"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "UNKNOWN"
	}
	return severityNames[s]
}

// Issue is one finding. Line is 0 for findings about the file as a whole, such as
// its name.
type Issue struct {
	FilePath string // relative to the linted root
	Severity Severity
	Rule     string
	Message  string
	Fix      string // suggestion shown to the user
	Line     int
	Fixable  bool // lint --fix resolves it
}

// Result collects the findings of one lint run.
type Result struct {
	Issues     []Issue
	FilesTotal int
}

func (r *Result) tally() (counts [len(severityNames)]int) {
	for _, is := range r.Issues {
		if is.Severity >= 0 && int(is.Severity) < len(counts) {
			counts[is.Severity]++
		}
	}
	return counts
}

func (r *Result) ErrorCount() int   { return r.tally()[SeverityError] }
func (r *Result) WarningCount() int { return r.tally()[SeverityWarning] }
func (r *Result) InfoCount() int    { return r.tally()[SeverityInfo] }
func (r *Result) HasErrors() bool   { return r.ErrorCount() > 0 }
func (r *Result) HasWarnings() bool { return r.WarningCount() > 0 }

// ExitCode is 0 when clean, 1 with warnings only and 2 with errors. Info findings
// never fail a run.
func (r *Result) ExitCode() int {
	c := r.tally()
	switch {
	case c[SeverityError] > 0:
		return 2
	case c[SeverityWarning] > 0:
		return 1
	}
	return 0
}

// sort orders issues by file, then line, then rule.
func (r *Result) sort() {
	slices.SortStableFunc(r.Issues, func(a, b Issue) int {
		return cmp.Or(
			strings.Compare(a.FilePath, b.FilePath),
			cmp.Compare(a.Line, b.Line),
			strings.Compare(a.Rule, b.Rule),
		)
	})
}

// Rule is one check. AppliesTo filters by path before Check is called.
type Rule interface {
	Name() string
	Check(src *Source) []Issue
	AppliesTo(filePath string) bool
}

func IsDocFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// IsAssetFile reports image assets, which are subject to the filename rule too.
func IsAssetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp":
		return true
	}
	return false
}
