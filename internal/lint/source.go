package lint

import (
	"bytes"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

// Line is one source line without its newline. Start is the byte offset in the file.
type Line struct {
	Num   int
	Start int
	Text  string
	// Front is set on lines of the front-matter block, delimiters included.
	Front bool
	// Code is set inside fenced code blocks, fences included.
	Code bool
}

// Source is a file prepared once and shared by all rules.
type Source struct {
	Path    string
	Content []byte
	Lines   []Line

	// Fields is nil when the front-matter is absent or does not parse; FrontErr holds the reason.
	Fields   map[string]any
	Body     []byte
	HadFront bool
	FrontErr error
}

// NewSource splits content into lines and decodes its front-matter.
func NewSource(path string, content []byte) *Source {
	s := &Source{Path: path, Content: content, Body: content}

	raw, body, had, _, err := frontmatter.Split(content)
	frontEnd := 0
	switch {
	case err != nil:
		s.FrontErr = err
	case had:
		s.HadFront = true
		s.Body = body
		if bytes.HasSuffix(content, body) {
			frontEnd = len(content) - len(body)
		}
		fields, perr := frontmatter.ParseYAML(raw)
		if perr != nil {
			s.FrontErr = perr
		} else {
			s.Fields = fields
		}
	default:
		s.Fields = map[string]any{}
	}

	fence := ""
	start := 0
	for i, text := range strings.SplitAfter(string(content), "\n") {
		if text == "" {
			break
		}
		l := Line{Num: i + 1, Start: start, Text: strings.TrimRight(text, "\r\n")}
		start += len(text)
		if l.Start < frontEnd {
			l.Front = true
			s.Lines = append(s.Lines, l)
			continue
		}
		trimmed := strings.TrimSpace(l.Text)
		switch {
		case fence != "":
			l.Code = true
			if strings.HasPrefix(trimmed, fence) && strings.TrimLeft(trimmed, fence[:1]) == "" {
				fence = ""
			}
		case openingFence(trimmed) != "":
			l.Code = true
			fence = openingFence(trimmed)
		}
		s.Lines = append(s.Lines, l)
	}
	return s
}

// openingFence returns the fence run for a line that opens a code block.
func openingFence(trimmed string) string {
	for _, ch := range []string{"`", "~"} {
		run := trimmed[:len(trimmed)-len(strings.TrimLeft(trimmed, ch))]
		if len(run) >= 3 {
			return run
		}
	}
	return ""
}

// Prose returns the text of a content line with inline code spans, URLs and link
// destinations blanked out. Offsets are preserved.
func Prose(text string) string {
	b := []byte(norm.NFC.String(text))
	if len(b) != len(text) {
		// Normalization changed the length; keep offsets of the original.
		b = []byte(text)
	}
	blank := func(from, to int) {
		for i := from; i < to && i < len(b); i++ {
			b[i] = ' '
		}
	}

	for i := 0; i < len(b); i++ {
		if b[i] != '`' {
			continue
		}
		run := 1
		for i+run < len(b) && b[i+run] == '`' {
			run++
		}
		closeAt := bytes.Index(b[i+run:], bytes.Repeat([]byte("`"), run))
		if closeAt < 0 {
			break
		}
		end := i + run + closeAt + run
		blank(i, end)
		i = end - 1
	}
	for _, loc := range urlPattern.FindAllIndex(b, -1) {
		blank(loc[0], loc[1])
	}
	for _, loc := range linkDestPattern.FindAllIndex(b, -1) {
		blank(loc[0], loc[1])
	}
	return string(b)
}
