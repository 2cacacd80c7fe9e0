// Package frontmatter splits, parses and re-assembles the YAML header of Markdown pages.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Style captures the newline shape of a document so rewrites keep it.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// ErrMissingClosingDelimiter indicates the document opened a front-matter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("front-matter opening delimiter found but closing delimiter is missing")

const delimiter = "---"

// Split separates `---` delimited YAML front-matter from the Markdown body.
// A closing delimiter on the last line without a newline is accepted.
// When the document has no front-matter, had is false and body is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	if !bytes.HasPrefix(content, []byte(delimiter+nl)) {
		return nil, content, false, style, nil
	}
	rest := content[len(delimiter)+len(nl):]

	// Empty block: the closing delimiter follows immediately.
	if end, ok := closingAt(rest, 0, nl); ok {
		return []byte{}, rest[end:], true, style, nil
	}

	for i := 0; i < len(rest); {
		j := bytes.Index(rest[i:], []byte(nl))
		if j < 0 {
			break
		}
		lineEnd := i + j + len(nl)
		if end, ok := closingAt(rest, lineEnd, nl); ok {
			return rest[:lineEnd], rest[end:], true, style, nil
		}
		i = lineEnd
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// closingAt reports whether a closing delimiter line starts at off and returns the body offset.
func closingAt(b []byte, off int, nl string) (int, bool) {
	tail := b[off:]
	if bytes.HasPrefix(tail, []byte(delimiter+nl)) {
		return off + len(delimiter) + len(nl), true
	}
	if bytes.Equal(tail, []byte(delimiter)) {
		return len(b), true
	}
	return 0, false
}

// Join reassembles a document from raw front-matter and body. If had is false it returns body.
func Join(fm []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	var buf bytes.Buffer
	buf.Grow(2*(len(delimiter)+len(nl)) + len(fm) + len(body))
	buf.WriteString(delimiter + nl)
	buf.Write(fm)
	buf.WriteString(delimiter + nl)
	buf.Write(body)
	return buf.Bytes()
}

// ParseYAML parses raw front-matter (without delimiters) into a map. Empty input yields an empty map.
// A block that is valid YAML but not a mapping is an error.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
