package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyEdits(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		edits []Edit
		want  string
	}{
		{"none", "abc", nil, "abc"},
		{"single", "See [x](./old.md).", []Edit{{Start: 8, End: 16, Replacement: []byte("./new.md")}}, "See [x](./new.md)."},
		{"unsorted multiple", "a  \nb\t\n", []Edit{{Start: 5, End: 6}, {Start: 1, End: 3}}, "a\nb\n"},
		{"crlf kept", "x \r\ny\r\n", []Edit{{Start: 1, End: 2}}, "x\r\ny\r\n"},
		{"insert", "ab", []Edit{{Start: 1, End: 1, Replacement: []byte("-")}}, "a-b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ApplyEdits([]byte(tc.src), tc.edits)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(out))
		})
	}
}

func TestApplyEdits_Rejects(t *testing.T) {
	src := []byte("abcdef")
	bad := [][]Edit{
		{{Start: 1, End: 4}, {Start: 3, End: 5}},
		{{Start: -1, End: 2}},
		{{Start: 3, End: 2}},
		{{Start: 2, End: 99}},
	}
	for _, edits := range bad {
		_, err := ApplyEdits(src, edits)
		require.Error(t, err)
	}
}
