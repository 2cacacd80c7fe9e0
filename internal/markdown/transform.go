package markdown

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
)

// linkTransformer rewrites relative links between Markdown sources into links between
// output URLs and records every link with its resolution status.
type linkTransformer struct {
	corpus *content.Corpus
}

func (t *linkTransformer) Transform(doc *gmast.Document, reader text.Reader, pc parser.Context) {
	state, ok := pc.Get(pageKey).(*pageState)
	if !ok || state.page == nil {
		return
	}
	src := reader.Source()

	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			l := t.resolve(state.page, string(node.Destination), LinkKindInline)
			l.Line = lineOf(node, src)
			node.Destination = []byte(l.Href)
			state.links = append(state.links, l)
		case *gmast.Image:
			l := t.resolve(state.page, string(node.Destination), LinkKindImage)
			l.Line = lineOf(node, src)
			node.Destination = []byte(l.Href)
			state.links = append(state.links, l)
		case *gmast.AutoLink:
			if node.AutoLinkType == gmast.AutoLinkURL {
				u := string(node.URL(src))
				state.links = append(state.links, PageLink{
					Kind: LinkKindAuto, Destination: u, Href: u, Status: StatusExternal, Line: lineOf(node, src),
				})
			}
		}
		return gmast.WalkContinue, nil
	})
}

// resolve classifies a destination written in page and computes its output href.
func (t *linkTransformer) resolve(page *content.Page, dest string, kind LinkKind) PageLink {
	l := PageLink{Kind: kind, Destination: dest, Href: dest}
	switch {
	case dest == "":
		l.Status = StatusUnrecognized
		return l
	case strings.HasPrefix(dest, "#"):
		l.Status = StatusAnchor
		l.Target = page.Src
		l.Fragment = dest[1:]
		return l
	case config.IsExternalURL(dest):
		l.Status = StatusExternal
		return l
	case strings.HasPrefix(dest, "/"):
		l.Status = StatusAbsolute
		return l
	}

	rawPath, frag, _ := strings.Cut(dest, "#")
	rawPath, query, _ := strings.Cut(rawPath, "?")
	l.Fragment = frag
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		decoded = rawPath
	}

	target, inside := content.ResolveSource(page.Src, decoded)
	if !inside {
		l.Status = StatusNotFound
		return l
	}
	suffix := ""
	if query != "" {
		suffix += "?" + query
	}
	if frag != "" {
		suffix += "#" + frag
	}

	if content.IsMarkdown(decoded) {
		p, ok := t.corpus.Page(target)
		if !ok {
			l.Status = StatusNotFound
			l.Target = target
			return l
		}
		l.Status = StatusPage
		l.Target = p.Src
		l.Href = hrefTo(page.URL, p.URL) + suffix
		return l
	}

	if a, ok := t.corpus.Asset(target); ok {
		l.Status = StatusAsset
		l.Target = a.Src
		l.Href = escapePath(content.RelativeURL(page.URL, a.Src)) + suffix
		return l
	}

	// A directory link such as "../backend/" resolves to that directory's index page.
	dir := strings.TrimSuffix(target, "/")
	if t.corpus.HasDirIndex(dir) {
		for _, name := range []string{"index.md", "README.md"} {
			if p, ok := t.corpus.Page(path.Join(dir, name)); ok {
				l.Status = StatusPage
				l.Target = p.Src
				l.Href = hrefTo(page.URL, p.URL) + suffix
				return l
			}
		}
	}

	l.Status = StatusUnrecognized
	l.Target = target
	return l
}

// hrefTo links between two page URLs; a link to the page itself keeps "./".
func hrefTo(from, to string) string {
	return escapePath(content.RelativeURL(from, to))
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		if s != "." && s != ".." {
			segs[i] = url.PathEscape(s)
		}
	}
	return strings.Join(segs, "/")
}

// lineOf returns the 1-based source line of the block containing an inline node.
func lineOf(n gmast.Node, src []byte) int {
	for b := n; b != nil; b = b.Parent() {
		if b.Type() != gmast.TypeBlock {
			continue
		}
		lines := b.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		if start > len(src) {
			start = len(src)
		}
		return bytes.Count(src[:start], []byte("\n")) + 1
	}
	return 0
}
