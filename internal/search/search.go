// Package search builds the client-side search index written to search/search_index.json.
package search

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// IndexPath is the site-relative location of the index.
const IndexPath = "search/search_index.json"

// Doc is one searchable entry: a whole page or one heading section of it.
type Doc struct {
	Location string  `json:"location"`
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Boost    float64 `json:"boost,omitempty"`
}

// Config is passed through to the search script.
type Config struct {
	Lang      []string `json:"lang"`
	Separator string   `json:"separator"`
}

// Index is the whole search index.
type Index struct {
	Config Config `json:"config"`
	Docs   []Doc  `json:"docs"`
}

// New creates an empty index.
func New(lang, separator string) *Index {
	if lang == "" {
		lang = "en"
	}
	return &Index{Config: Config{Lang: []string{lang}, Separator: separator}, Docs: []Doc{}}
}

// Add indexes a rendered page body. Pages excluded through front-matter are skipped.
// The page entry carries the full text; each heading with an id adds a section entry.
func (ix *Index) Add(page *content.Page, body []byte) {
	if page.Meta.Search.Exclude {
		return
	}
	boost := page.Meta.Search.Boost
	full, sections := extract(body)
	ix.Docs = append(ix.Docs, Doc{Location: page.URL, Title: page.Title, Text: full, Boost: boost})
	for _, s := range sections {
		ix.Docs = append(ix.Docs, Doc{Location: page.URL + "#" + s.id, Title: s.title, Text: s.text, Boost: boost})
	}
}

// JSON encodes the index without HTML escaping so the output stays readable and stable.
func (ix *Index) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ix); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "encode search index").Build()
	}
	return buf.Bytes(), nil
}

type section struct {
	id    string
	title string
	text  string
}

var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// extract returns the plain text of an HTML fragment and its heading sections.
func extract(body []byte) (string, []section) {
	z := html.NewTokenizer(bytes.NewReader(body))
	var (
		full     strings.Builder
		sections []section
		cur      *section
		curText  strings.Builder
		heading  *strings.Builder
		skip     int
	)
	flush := func() {
		if cur != nil {
			cur.text = collapse(curText.String())
			sections = append(sections, *cur)
		}
		curText.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			flush()
			return collapse(full.String()), sections
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				skip++
			case headingAtoms[a]:
				id := ""
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					if string(k) == "id" {
						id = string(v)
					}
				}
				if id != "" {
					flush()
					cur = &section{id: id}
					heading = &strings.Builder{}
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Script || a == atom.Style:
				if skip > 0 {
					skip--
				}
			case headingAtoms[a] && heading != nil:
				cur.title = collapse(heading.String())
				heading = nil
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			full.WriteString(text)
			full.WriteByte(' ')
			if heading != nil {
				heading.WriteString(text)
				continue
			}
			curText.WriteString(text)
			curText.WriteByte(' ')
		}
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
