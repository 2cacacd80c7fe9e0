package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		fm    string
		body  string
		had   bool
		nl    string
	}{
		{"no header", "# Python\n\nUse uv.\n", "", "# Python\n\nUse uv.\n", false, "\n"},
		{"header", "---\ntitle: Python\n---\n# Python\n", "title: Python\n", "# Python\n", true, "\n"},
		{"crlf", "---\r\ntitle: Go\r\n---\r\n# Go\r\n", "title: Go\r\n", "# Go\r\n", true, "\r\n"},
		{"empty header", "---\n---\n# Home\n", "", "# Home\n", true, "\n"},
		{"closing delimiter at eof", "---\ntitle: x\n---", "title: x\n", "", true, "\n"},
		{"thematic break in body", "---\ntitle: x\n---\nintro\n\n---\n\nmore\n", "title: x\n", "intro\n\n---\n\nmore\n", true, "\n"},
		{"dashes not at start", "intro\n---\ntitle: x\n---\n", "", "intro\n---\ntitle: x\n---\n", false, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, had, style, err := Split([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.had, had)
			assert.Equal(t, tt.fm, string(fm))
			assert.Equal(t, tt.body, string(body))
			assert.Equal(t, tt.nl, style.Newline)

			if tt.name != "closing delimiter at eof" {
				assert.Equal(t, tt.input, string(Join(fm, body, had, style)), "join restores the input")
			}
		})
	}
}

func TestSplitUnclosedHeader(t *testing.T) {
	_, _, had, _, err := Split([]byte("---\ntitle: Python\n# Python\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	assert.False(t, had)
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Python\ntags:\n  - backend\n"))
	require.NoError(t, err)
	assert.Equal(t, "Python", fields["title"])
	assert.Equal(t, []any{"backend"}, fields["tags"])

	fields, err = ParseYAML([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, fields)

	for _, bad := range []string{": not yaml", "- a\n- b\n", "title: [unclosed\n"} {
		_, err := ParseYAML([]byte(bad))
		assert.Error(t, err, bad)
	}
}
