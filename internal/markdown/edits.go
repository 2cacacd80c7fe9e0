package markdown

import (
	"cmp"
	"fmt"
	"slices"
)

// Edit replaces source[Start:End]. Start == End inserts.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ApplyEdits rewrites source with edits expressed in offsets of the original
// source, in any order. Overlapping or out-of-range edits are rejected and source
// is returned untouched when there is nothing to do.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}
	ordered := slices.SortedFunc(slices.Values(edits), func(a, b Edit) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	grow := 0
	for _, e := range ordered {
		grow += len(e.Replacement) - (e.End - e.Start)
	}
	out := make([]byte, 0, max(len(source)+grow, 0))

	cursor := 0
	for _, e := range ordered {
		if e.Start < 0 || e.End < e.Start || e.End > len(source) {
			return nil, fmt.Errorf("edit [%d:%d] outside source of %d bytes", e.Start, e.End, len(source))
		}
		if e.Start < cursor {
			return nil, fmt.Errorf("edit [%d:%d] overlaps previous edit ending at %d", e.Start, e.End, cursor)
		}
		out = append(append(out, source[cursor:e.Start]...), e.Replacement...)
		cursor = e.End
	}
	return append(out, source[cursor:]...), nil
}
