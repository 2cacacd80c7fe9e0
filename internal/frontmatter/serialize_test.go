package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeYAML(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		nl     string
		want   string
	}{
		{"empty", map[string]any{}, "\n", ""},
		{"sorted keys", map[string]any{"title": "Guide", "search": map[string]any{"exclude": true}, "author": "ops"}, "\n",
			"author: ops\nsearch:\n  exclude: true\ntitle: Guide\n"},
		{"nested maps sort too", map[string]any{"extra": map[string]any{"b": 2, "a": 1}}, "\n", "extra:\n  a: 1\n  b: 2\n"},
		{"crlf", map[string]any{"title": "Guide"}, "\r\n", "title: Guide\r\n"},
		{"list", map[string]any{"tags": []any{"go", "python"}}, "\n", "tags:\n  - go\n  - python\n"},
		{"plain date", map[string]any{"date": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, "\n", "date: 2024-05-01\n"},
		{"map with any keys", map[string]any{"ports": map[any]any{8080: "http"}}, "\n", "ports:\n  \"8080\": http\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := SerializeYAML(tt.fields, Style{Newline: tt.nl})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestSerializeYAMLRoundTrip(t *testing.T) {
	fields := map[string]any{"title": "Python", "weight": 3, "draft": false}
	out, err := SerializeYAML(fields, Style{})
	require.NoError(t, err)
	back, err := ParseYAML(out)
	require.NoError(t, err)
	assert.Equal(t, fields, back)

	again, err := SerializeYAML(back, Style{})
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again), "serializing is stable")
}
