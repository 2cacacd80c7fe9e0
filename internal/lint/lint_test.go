package lint

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func checkRule(rule Rule, path, content string) []Issue {
	return rule.Check(NewSource(path, []byte(content)))
}

func TestFilenameRule(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"backend/python.md", ""},
		{"ci-cd/github_actions.md", ""},
		{"img/arch.drawio.svg", ""},
		{"Backend.md", "Filename contains uppercase letters"},
		{"my page.md", "Filename contains whitespace"},
		{"café.md", "Filename must be lowercase letters, digits, '.', '-' or '_'"},
	}
	r := &FilenameRule{}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			issues := checkRule(r, tc.path, "")
			if tc.want == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, tc.want, issues[0].Message)
			assert.Equal(t, SeverityError, issues[0].Severity)
		})
	}
	assert.False(t, r.AppliesTo("docs/README.md"))
	assert.False(t, r.AppliesTo("notes.txt"))
}

func TestFrontmatterRule(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "# Title\n", nil},
		{"valid", "---\ntitle: Python\nsearch:\n  exclude: false\n  boost: 2\n---\nBody\n", nil},
		{"unclosed", "---\ntitle: x\n", []string{"Front-matter does not parse"}},
		{"bad yaml", "---\ntitle: [x\n---\n", []string{"Front-matter does not parse"}},
		{"title list", "---\ntitle: [a, b]\n---\n", []string{"title must be a string"}},
		{"search scalar", "---\nsearch: yes\n---\n", []string{"search must be a mapping"}},
		{"search keys", "---\nsearch:\n  boost: high\n  hidden: true\n---\n", []string{"search.boost must be a number", `unknown search key "hidden"`}},
		{"negative boost", "---\nsearch:\n  boost: -1.5\n---\n", []string{"search.boost must not be negative"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues := checkRule(&FrontmatterRule{}, "page.md", tc.content)
			require.Len(t, issues, len(tc.want))
			for i, want := range tc.want {
				assert.Contains(t, issues[i].Message, want)
			}
		})
	}
}

func TestHeadingIncrementRule(t *testing.T) {
	content := "---\ntitle: x\n---\n# One\n\n### Three\n\n```\n##### not a heading\n```\n\n## Two\n#### Four\n"
	issues := checkRule(&HeadingIncrementRule{}, "page.md", content)
	require.Len(t, issues, 2)
	assert.Equal(t, 6, issues[0].Line)
	assert.Equal(t, "Heading level jumps from h1 to h3", issues[0].Message)
	assert.Equal(t, 13, issues[1].Line)
}

func TestTrailingWhitespaceRule(t *testing.T) {
	issues := checkRule(&TrailingWhitespaceRule{}, "page.md", "clean\ndirty  \n\ttabbed\t\r\nlast ")
	var lines []int
	for _, i := range issues {
		lines = append(lines, i.Line)
		assert.True(t, i.Fixable)
	}
	assert.Equal(t, []int{2, 3, 4}, lines)
}

func TestLineLengthRule(t *testing.T) {
	long := strings.Repeat("word ", 10)
	content := strings.Join([]string{
		long,
		"https://example.com/" + strings.Repeat("x", 60),
		"| " + long + " |",
		"# " + long,
		"```",
		long,
		"```",
		"short line",
	}, "\n")
	issues := checkRule(&LineLengthRule{Max: 40}, "page.md", content)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Line)
	assert.Equal(t, "Line is 50 characters long (max 40)", issues[0].Message)
}

func TestSpellingRule(t *testing.T) {
	r := &SpellingRule{
		Corrections: map[string]string{"teh": "the", "recieve": "receive", "kubernates": "kubernetes"},
		Allow:       map[string]bool{"kubernates": true},
	}
	content := strings.Join([]string{
		"---",
		"title: teh title",
		"---",
		"Teh service will recieve `teh` events.",
		"See [teh docs](https://example.com/teh) and kubernates.",
		"```",
		"teh",
		"```",
	}, "\n")
	issues := checkRule(r, "page.md", content)
	require.Len(t, issues, 3)
	assert.Equal(t, `"Teh" is misspelled`, issues[0].Message)
	assert.Equal(t, `Replace with "The"`, issues[0].Fix)
	assert.Equal(t, 4, issues[1].Line)
	assert.Equal(t, `"teh" is misspelled`, issues[2].Message)
	assert.Equal(t, 5, issues[2].Line)
}

func TestMatchCase(t *testing.T) {
	assert.Equal(t, "the", matchCase("teh", "the"))
	assert.Equal(t, "The", matchCase("Teh", "the"))
	assert.Equal(t, "THE", matchCase("TEH", "the"))
}

func TestFingerprintRule(t *testing.T) {
	r := &FingerprintRule{}
	assert.Empty(t, checkRule(r, "page.md", "---\ntitle: x\n---\nBody\n"))

	issues := checkRule(r, "page.md", "---\ntitle: x\nfingerprint: stale\n---\nBody\n")
	require.Len(t, issues, 1)
	assert.Equal(t, "fingerprint does not match the page content", issues[0].Message)

	fixed, changed, err := refreshFingerprint([]byte("---\ntitle: x\nfingerprint: stale\n---\nBody\n"))
	require.NoError(t, err)
	require.True(t, changed)
	assert.Empty(t, checkRule(r, "page.md", string(fixed)))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxLineLength, cfg.LineLength.Max)

	p := filepath.Join(dir, "lint.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
[rules]
disable = ["line-length"]

[line_length]
max = 100

[spelling]
words = ["Kubernates"]

[spelling.corrections]
colour = "color"
`), 0o644))
	cfg, err = LoadConfig(p)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled(RuleLineLength))
	assert.True(t, cfg.Enabled(RuleSpelling))
	assert.Equal(t, 100, cfg.LineLength.Max)
	assert.Equal(t, map[string]string{"colour": "color"}, cfg.Spelling.Corrections)
	for _, r := range cfg.rules() {
		assert.NotEqual(t, RuleLineLength, r.Name())
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "[rules]\nenable = [\"x\"]\n",
		"unknown table": "[extra]\nx = 1\n",
		"malformed":     "[rules\n",
		"unknown rule":  "[rules]\ndisable = [\"grammar\"]\n",
		"zero max":      "[line_length]\nmax = 0\n",
		"empty fix":     "[spelling.corrections]\nteh = \"\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data), "lint.toml")
			require.Error(t, err)
			assert.Equal(t, errors.CategoryLint, errors.GetCategory(err))
		})
	}
}

func TestLintPath(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"index.md":          "# Standards\n\nAll good.\n",
		"README.md":         "# Readme\n",
		"backend/Python.md": "# Python\n\n### Tooling\n",
		"backend/go.md":     "# Go\n\nWe recieve requests. \n",
		".drafts/Draft.md":  "# skipped\n",
		"img/Logo.png":      "png",
		"notes.txt":         "ignored",
	})

	res, err := NewLinter(nil, Options{}).LintPath(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, res.FilesTotal)
	assert.Equal(t, 2, res.ErrorCount())
	assert.Equal(t, 3, res.WarningCount())
	assert.Equal(t, 2, res.ExitCode())

	var got []string
	for _, i := range res.Issues {
		got = append(got, i.FilePath+" "+i.Rule)
	}
	assert.Equal(t, []string{
		"backend/Python.md filename",
		"backend/Python.md heading-increment",
		"backend/go.md spelling",
		"backend/go.md trailing-whitespace",
		"img/Logo.png filename",
	}, got)

	quiet, err := NewLinter(nil, Options{Quiet: true}).LintPath(dir)
	require.NoError(t, err)
	assert.Len(t, quiet.Issues, 2)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, (&Result{}).ExitCode())
	assert.Equal(t, 0, (&Result{Issues: []Issue{{Severity: SeverityInfo}}}).ExitCode())
	assert.Equal(t, 1, (&Result{Issues: []Issue{{Severity: SeverityWarning}}}).ExitCode())
	assert.Equal(t, 2, (&Result{Issues: []Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}}).ExitCode())
}

func TestLintMissingPath(t *testing.T) {
	_, err := NewLinter(nil, Options{}).LintPath(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryLint, errors.GetCategory(err))
}

func TestFixer(t *testing.T) {
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"go.md":    "---\ntitle: Go\nfingerprint: stale\n---\n# Go  \n\nTeh service will recieve events.\n\n```\nteh  \n```\n",
		"clean.md": "# Clean\n",
	})

	dry, err := NewFixer(nil, true).Fix(dir)
	require.NoError(t, err)
	require.Len(t, dry.Files, 1)
	assert.True(t, strings.HasPrefix(dry.Summary(), "Would fix 1 file"))
	before, _ := os.ReadFile(filepath.Join(dir, "go.md"))
	assert.Contains(t, string(before), "recieve")

	res, err := NewFixer(nil, false).Fix(dir)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	f := res.Files[0]
	assert.Equal(t, "go.md", f.Path)
	assert.Equal(t, 2, f.Whitespace)
	assert.Equal(t, 2, f.Spelling)
	assert.True(t, f.Fingerprint)

	after := testutil.NewFileAssertions(t, dir).Read("go.md")
	assert.Contains(t, after, "The service will receive events.")
	assert.Contains(t, after, "```\nteh\n```")
	assert.NotContains(t, after, "stale")

	lint, err := NewLinter(nil, Options{}).LintPath(dir)
	require.NoError(t, err)
	assert.Empty(t, lint.Issues)

	again, err := NewFixer(nil, false).Fix(dir)
	require.NoError(t, err)
	assert.Empty(t, again.Files)
}

func TestFormatters(t *testing.T) {
	res := &Result{FilesTotal: 2, Issues: []Issue{
		{FilePath: "a.md", Severity: SeverityError, Rule: RuleFilename, Message: "bad name", Fix: "rename"},
		{FilePath: "a.md", Severity: SeverityWarning, Rule: RuleSpelling, Line: 3, Message: "typo", Fixable: true},
	}}

	var text bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&text, res, "docs"))
	out := text.String()
	assert.Contains(t, out, "Linting documentation in: docs")
	assert.Contains(t, out, "ERROR [filename] bad name")
	assert.Contains(t, out, "WARNING:3 [spelling] typo")
	assert.Contains(t, out, "Fix: rename")
	assert.Contains(t, out, "1 error\n")
	assert.Contains(t, out, "1 warning\n")

	var js bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&js, res, "docs"))
	var decoded JSONOutput
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.ErrorCount)
	require.Len(t, decoded.Issues, 2)
	assert.Equal(t, "WARNING", decoded.Issues[1].Severity)
	assert.True(t, decoded.Issues[1].Fixable)
}

func TestFixResultSummary(t *testing.T) {
	tests := []struct {
		name   string
		result FixResult
		want   string
	}{
		{"one file", FixResult{Files: []FileFix{{Path: "a.md", Whitespace: 2}}},
			"Fixed 1 file: 2 trailing whitespace, 0 spelling, 0 fingerprints"},
		{"dry run, several files", FixResult{DryRun: true, Files: []FileFix{{Path: "a.md", Spelling: 1}, {Path: "b.md", Fingerprint: true}}},
			"Would fix 2 files: 0 trailing whitespace, 1 spelling, 1 fingerprint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Summary())
		})
	}
}
