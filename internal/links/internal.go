package links

import (
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Rendered is what validation needs to know about one rendered page.
type Rendered struct {
	Src     string
	Links   []markdown.PageLink
	Anchors map[string]bool
}

// Validate checks every link recorded while rendering. Targets that resolved to a page
// are checked for the fragment in that page's anchor set. Ignored kinds are dropped.
func Validate(pages []Rendered, levels config.LinkValidation) []Issue {
	anchors := make(map[string]map[string]bool, len(pages))
	for _, p := range pages {
		anchors[p.Src] = p.Anchors
	}

	var issues []Issue
	add := func(kind Kind, level config.Level, page string, l markdown.PageLink, msg string) {
		if level == config.LevelIgnore {
			return
		}
		issues = append(issues, Issue{Kind: kind, Level: level, Page: page, Link: l.Destination, Line: l.Line, Message: msg})
	}

	for _, p := range pages {
		for _, l := range p.Links {
			switch l.Status {
			case markdown.StatusNotFound:
				msg := fmt.Sprintf("link %q points to a file that is not in the docs directory", l.Destination)
				if l.Target != "" {
					msg = fmt.Sprintf("link %q points to %s, which does not exist", l.Destination, l.Target)
				}
				add(KindNotFound, levels.NotFound, p.Src, l, msg)
			case markdown.StatusAbsolute:
				add(KindAbsolute, levels.AbsoluteLinks, p.Src, l,
					fmt.Sprintf("absolute link %q is left as is", l.Destination))
			case markdown.StatusUnrecognized:
				add(KindUnrecognized, levels.UnrecognizedLinks, p.Src, l,
					fmt.Sprintf("link %q is neither a page nor an asset", l.Destination))
			case markdown.StatusPage, markdown.StatusAnchor:
				if l.Fragment == "" {
					continue
				}
				set, ok := anchors[l.Target]
				if ok && !set[l.Fragment] {
					add(KindAnchor, levels.Anchors, p.Src, l,
						fmt.Sprintf("anchor #%s is not defined in %s", l.Fragment, l.Target))
				}
			}
		}
	}
	Sort(issues)
	return issues
}

// ExternalURLs returns the distinct external http(s) links of all pages in first-seen order.
func ExternalURLs(pages []Rendered) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range pages {
		for _, l := range p.Links {
			if l.Status != markdown.StatusExternal || !isHTTP(l.Destination) || seen[l.Destination] {
				continue
			}
			seen[l.Destination] = true
			out = append(out, l.Destination)
		}
	}
	return out
}
