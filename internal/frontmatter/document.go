package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a Markdown file split into its front-matter fields, typed metadata and body.
type Document struct {
	Raw    []byte
	Fields map[string]any
	Meta   Meta
	Body   []byte
	Had    bool
	Style  Style
}

// Parse splits content and decodes its front-matter both as a generic map and as Meta.
func Parse(content []byte) (*Document, error) {
	raw, body, had, style, err := Split(content)
	if err != nil {
		return nil, err
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("front-matter: %w", err)
	}
	var meta Meta
	if had && len(fields) > 0 {
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("front-matter: %w", err)
		}
	}
	return &Document{Raw: raw, Fields: fields, Meta: meta, Body: body, Had: had, Style: style}, nil
}

// Bytes re-serializes the document with sorted front-matter keys.
// A document whose fields are all removed loses its front-matter block.
func (d *Document) Bytes() ([]byte, error) {
	if len(d.Fields) == 0 {
		return Join(nil, d.Body, d.Had && len(d.Raw) == 0, d.Style), nil
	}
	fm, err := SerializeYAML(d.Fields, d.Style)
	if err != nil {
		return nil, err
	}
	return Join(fm, d.Body, true, d.Style), nil
}
