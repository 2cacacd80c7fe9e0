// Package markdown renders page bodies to HTML with goldmark, assigning heading anchors,
// building the table of contents and rewriting links between pages.
package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Heading is one table of contents entry.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is the rendered form of one page.
type Result struct {
	HTML    []byte
	TOC     []Heading
	Anchors map[string]bool
	Links   []PageLink
}

// Renderer converts page bodies. It is safe for concurrent use; all per-page state
// lives in the parser context.
type Renderer struct {
	md goldmark.Markdown
}

var pageKey = parser.NewContextKey()

type pageState struct {
	page  *content.Page
	links []PageLink
}

// NewRenderer builds a renderer that resolves links against corpus.
func NewRenderer(corpus *content.Corpus) *Renderer {
	return &Renderer{md: newGoldmark(&linkTransformer{corpus: corpus})}
}

func newGoldmark(transformers ...parser.ASTTransformer) goldmark.Markdown {
	prioritized := make([]util.PrioritizedValue, 0, len(transformers))
	for _, t := range transformers {
		prioritized = append(prioritized, util.Prioritized(t, 100))
	}
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
			parser.WithASTTransformers(prioritized...),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Render converts body (front-matter removed, macros applied) for page.
func (r *Renderer) Render(page *content.Page, body []byte) (*Result, error) {
	state := &pageState{page: page}
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	ctx.Set(pageKey, state)

	root := r.md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, root); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "render markdown").
			WithContext("page", page.Src).Build()
	}

	anchors := collectIDs(buf.Bytes())
	toc := headings(root, body)
	for _, h := range toc {
		anchors[h.ID] = true
	}
	return &Result{HTML: buf.Bytes(), TOC: toc, Anchors: anchors, Links: state.links}, nil
}

func headings(root gmast.Node, src []byte) []Heading {
	var out []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			switch b := v.(type) {
			case []byte:
				id = string(b)
			case string:
				id = b
			}
		}
		out = append(out, Heading{Level: h.Level, ID: id, Text: plainText(h, src)})
		return gmast.WalkSkipChildren, nil
	})
	return out
}

// plainText concatenates the literal text below n.
func plainText(n gmast.Node, src []byte) string {
	var b bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return string(bytes.TrimSpace(b.Bytes()))
}

// ExtractLinks parses a Markdown body and extracts link-like constructs.
// This is an analysis API; it does not render or resolve anything.
func ExtractLinks(body []byte, _ Options) ([]Link, error) {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			// Reference-style links arrive as resolved Link nodes.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not in the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links, nil
}
