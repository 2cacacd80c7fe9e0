package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter writes a lint result for the docs tree at path.
type Formatter interface {
	Format(w io.Writer, result *Result, path string) error
}

// NewFormatter returns the JSON formatter for "json" and the text formatter for
// anything else.
func NewFormatter(format string) Formatter {
	if format == "json" {
		return jsonFormatter{}
	}
	return textFormatter{}
}

var icons = [...]string{SeverityInfo: "ℹ", SeverityWarning: "⚠", SeverityError: "✗"}

const separator = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

type textFormatter struct{}

func (textFormatter) Format(w io.Writer, result *Result, path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Linting documentation in: %s\n%s\n", path, separator)

	file := ""
	for _, is := range result.Issues {
		if is.FilePath != file {
			file = is.FilePath
			fmt.Fprintf(&b, "\n%s\n", file)
		}
		writeIssue(&b, is)
	}

	fmt.Fprintf(&b, "\n%s\nResults:\n  %d files scanned\n", separator, result.FilesTotal)
	errs, warns, infos := result.ErrorCount(), result.WarningCount(), result.InfoCount()
	if errs > 0 {
		fmt.Fprintf(&b, "  %s\n", plural(errs, "error"))
	}
	if warns > 0 {
		fmt.Fprintf(&b, "  %s\n", plural(warns, "warning"))
	}
	if infos > 0 {
		fmt.Fprintf(&b, "  %d info\n", infos)
	}
	b.WriteByte('\n')

	switch {
	case errs > 0:
		b.WriteString("✗ Documentation has errors.\n")
	case warns > 0:
		b.WriteString("⚠ Documentation has warnings. To auto-fix what can be fixed: docsite lint --fix\n")
	case infos > 0:
		b.WriteString("ℹ All issues are informational.\n")
	default:
		b.WriteString("✓ All documentation passes linting.\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeIssue(b *strings.Builder, is Issue) {
	icon := "?"
	if is.Severity >= 0 && int(is.Severity) < len(icons) {
		icon = icons[is.Severity]
	}
	fmt.Fprintf(b, "  %s %s", icon, is.Severity)
	if is.Line > 0 {
		fmt.Fprintf(b, ":%d", is.Line)
	}
	fmt.Fprintf(b, " [%s] %s\n", is.Rule, is.Message)
	if is.Fix != "" {
		fmt.Fprintf(b, "      Fix: %s\n", is.Fix)
	}
}

func plural(n int, noun string) string {
	return fmt.Sprintf("%d %s%s", n, noun, pluralize(n))
}

// pluralize is the suffix for a count of n: "" for one, "s" otherwise.
func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// JSONOutput is the document written by lint --format json.
type JSONOutput struct {
	Path         string      `json:"path"`
	FilesTotal   int         `json:"files_total"`
	ErrorCount   int         `json:"error_count"`
	WarningCount int         `json:"warning_count"`
	InfoCount    int         `json:"info_count"`
	Issues       []JSONIssue `json:"issues"`
}

type JSONIssue struct {
	FilePath string `json:"file_path"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
	Line     int    `json:"line,omitempty"`
	Fixable  bool   `json:"fixable,omitempty"`
}

type jsonFormatter struct{}

func (jsonFormatter) Format(w io.Writer, result *Result, path string) error {
	out := JSONOutput{
		Path:         path,
		FilesTotal:   result.FilesTotal,
		ErrorCount:   result.ErrorCount(),
		WarningCount: result.WarningCount(),
		InfoCount:    result.InfoCount(),
		Issues:       make([]JSONIssue, len(result.Issues)),
	}
	for i, is := range result.Issues {
		out.Issues[i] = JSONIssue{
			FilePath: is.FilePath,
			Severity: is.Severity.String(),
			Rule:     is.Rule,
			Message:  is.Message,
			Fix:      is.Fix,
			Line:     is.Line,
			Fixable:  is.Fixable,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
