// Package nav builds and validates the declarative navigation tree.
package nav

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Node is one navigation entry: a page, an external link or a section.
type Node struct {
	Label    string
	Page     *content.Page
	URL      string
	External bool
	Children []*Node
	Parent   *Node
}

// IsSection reports whether the node groups children instead of linking.
func (n *Node) IsSection() bool { return n.Page == nil && n.URL == "" && !n.External }

// Tree is the resolved navigation.
type Tree struct {
	Roots []*Node
}

// Finding is a non-fatal navigation problem, reported at validation.nav.not_found level.
type Finding struct {
	Label  string
	Target string
}

// DanglingRef is a nav entry naming a Markdown page that does not exist.
type DanglingRef struct {
	Label  string
	Target string
	Trail  string
}

// Build resolves every item against the corpus. All Markdown references that do not resolve
// are collected and returned together in one CategoryNav error. Local non-Markdown targets
// that match neither a page URL nor an asset come back as findings.
func Build(items []config.NavItem, corpus *content.Corpus) (*Tree, []Finding, error) {
	b := &builder{corpus: corpus}
	roots := b.build(items, nil, "")
	if len(b.dangling) > 0 {
		refs := make([]string, 0, len(b.dangling))
		for _, d := range b.dangling {
			refs = append(refs, fmt.Sprintf("%s -> %s", d.Trail, d.Target))
		}
		return nil, b.findings, errors.NavError(fmt.Sprintf("%d navigation reference(s) do not resolve to a page", len(refs))).
			WithContext("missing", refs).Build()
	}
	return &Tree{Roots: roots}, b.findings, nil
}

type builder struct {
	corpus   *content.Corpus
	dangling []DanglingRef
	findings []Finding
}

func (b *builder) build(items []config.NavItem, parent *Node, trail string) []*Node {
	out := make([]*Node, 0, len(items))
	for _, it := range items {
		label := it.Label
		crumb := label
		if crumb == "" {
			crumb = it.Path
		}
		here := crumb
		if trail != "" {
			here = trail + " / " + crumb
		}

		n := &Node{Label: label, Parent: parent}
		switch {
		case it.Section:
			n.Children = b.build(it.Children, n, here)
		case it.IsExternal():
			n.URL = it.Path
			n.External = true
		default:
			b.resolveLocal(n, it, here)
		}
		out = append(out, n)
	}
	return out
}

func (b *builder) resolveLocal(n *Node, it config.NavItem, trail string) {
	target, frag, _ := strings.Cut(it.Path, "#")
	target = strings.TrimPrefix(target, "./")

	if content.IsMarkdown(target) {
		p, ok := b.corpus.Page(target)
		if !ok {
			b.dangling = append(b.dangling, DanglingRef{Label: it.Label, Target: it.Path, Trail: trail})
			return
		}
		n.Page = p
		if n.Label == "" {
			n.Label = p.Title
		}
		n.URL = p.URL
		if frag != "" {
			n.URL += "#" + frag
		}
		return
	}

	// Local non-Markdown target: a page URL, an asset or a directory with an index.
	n.URL = it.Path
	if n.Label == "" {
		n.Label = it.Path
	}
	clean := strings.TrimPrefix(target, "/")
	if p, ok := b.corpus.PageByURL(clean); ok {
		n.URL = p.URL
		return
	}
	if _, ok := b.corpus.Asset(clean); ok {
		return
	}
	if b.corpus.HasDirIndex(strings.TrimSuffix(clean, "/")) {
		return
	}
	b.findings = append(b.findings, Finding{Label: n.Label, Target: it.Path})
}

// Auto derives a tree from the directory layout: index first, then pages, then
// subdirectories as sections, each level in lexical order.
func Auto(corpus *content.Corpus) *Tree {
	type dir struct {
		index *content.Page
		pages []*content.Page
		subs  map[string]*dir
	}
	root := &dir{subs: map[string]*dir{}}
	for _, p := range corpus.Pages {
		d := root
		if pd := p.Dir(); pd != "" {
			for _, seg := range strings.Split(pd, "/") {
				next, ok := d.subs[seg]
				if !ok {
					next = &dir{subs: map[string]*dir{}}
					d.subs[seg] = next
				}
				d = next
			}
		}
		if p.IsIndex {
			d.index = p
		} else {
			d.pages = append(d.pages, p)
		}
	}

	var walk func(d *dir, parent *Node) []*Node
	walk = func(d *dir, parent *Node) []*Node {
		var out []*Node
		if d.index != nil {
			out = append(out, pageNode(d.index, parent))
		}
		sort.Slice(d.pages, func(i, j int) bool { return d.pages[i].Src < d.pages[j].Src })
		for _, p := range d.pages {
			out = append(out, pageNode(p, parent))
		}
		names := make([]string, 0, len(d.subs))
		for name := range d.subs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sub := d.subs[name]
			label := content.TitleFromName(name)
			if sub.index != nil {
				label = sub.index.Title
			}
			section := &Node{Label: label, Parent: parent}
			section.Children = walk(sub, section)
			out = append(out, section)
		}
		return out
	}
	return &Tree{Roots: walk(root, nil)}
}

func pageNode(p *content.Page, parent *Node) *Node {
	return &Node{Label: p.Title, Page: p, URL: p.URL, Parent: parent}
}

// Flatten yields the linked pages in reading order. A page listed twice appears once.
func (t *Tree) Flatten() []*Node {
	var out []*Node
	seen := map[*content.Page]bool{}
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if n.Page != nil && !seen[n.Page] {
				seen[n.Page] = true
				out = append(out, n)
			}
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return out
}

// Find returns the first node linking to the page.
func (t *Tree) Find(p *content.Page) *Node {
	var found *Node
	var walk func([]*Node) bool
	walk = func(nodes []*Node) bool {
		for _, n := range nodes {
			if n.Page == p {
				found = n
				return true
			}
			if walk(n.Children) {
				return true
			}
		}
		return false
	}
	walk(t.Roots)
	return found
}

// Neighbors returns the previous and next pages in reading order, nil at the edges
// or when the page is not in the tree.
func (t *Tree) Neighbors(p *content.Page) (prev, next *Node) {
	flat := t.Flatten()
	for i, n := range flat {
		if n.Page != p {
			continue
		}
		if i > 0 {
			prev = flat[i-1]
		}
		if i+1 < len(flat) {
			next = flat[i+1]
		}
		return prev, next
	}
	return nil, nil
}

// Breadcrumbs returns the chain of ancestors of the page's node, outermost first,
// excluding the node itself.
func (t *Tree) Breadcrumbs(p *content.Page) []*Node {
	n := t.Find(p)
	if n == nil {
		return nil
	}
	var chain []*Node
	for a := n.Parent; a != nil; a = a.Parent {
		chain = append([]*Node{a}, chain...)
	}
	return chain
}

// IsAncestorOf reports whether n contains the page somewhere below it.
func (n *Node) IsAncestorOf(p *content.Page) bool {
	for _, c := range n.Children {
		if c.Page == p || c.IsAncestorOf(p) {
			return true
		}
	}
	return false
}

// Omitted lists corpus pages that the tree does not link to, in lexical order.
func Omitted(t *Tree, corpus *content.Corpus) []*content.Page {
	linked := map[*content.Page]bool{}
	for _, n := range t.Flatten() {
		linked[n.Page] = true
	}
	var out []*content.Page
	for _, p := range corpus.Pages {
		if !linked[p] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Src < out[j].Src })
	return out
}

// SectionPath returns the labels leading to the node, used in logs.
func SectionPath(n *Node) string {
	var parts []string
	for a := n; a != nil; a = a.Parent {
		parts = append([]string{a.Label}, parts...)
	}
	return strings.Join(parts, " / ")
}
