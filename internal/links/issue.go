// Package links validates links between pages, links in the generated HTML and,
// optionally, external URLs.
package links

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Kind classifies a link finding.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindAnchor       Kind = "anchor"
	KindAbsolute     Kind = "absolute"
	KindUnrecognized Kind = "unrecognized"
	KindHTML         Kind = "html"
	KindExternal     Kind = "external"
)

// Issue is one link finding. Level is the configured reporting level for its kind.
type Issue struct {
	Kind    Kind         `json:"kind"`
	Level   config.Level `json:"level"`
	Page    string       `json:"page"`
	Link    string       `json:"link"`
	Line    int          `json:"line,omitempty"`
	Message string       `json:"message"`
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", i.Page, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Page, i.Message)
}

// Sort orders issues by page, line and link.
func Sort(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.Page != y.Page {
			return x.Page < y.Page
		}
		if x.Line != y.Line {
			return x.Line < y.Line
		}
		return x.Link < y.Link
	})
}

// CountByKind tallies issues that are not ignored.
func CountByKind(issues []Issue) map[Kind]int {
	out := make(map[Kind]int)
	for _, i := range issues {
		if i.Level != config.LevelIgnore {
			out[i.Kind]++
		}
	}
	return out
}

// Warnings returns the issues reported at warn level.
func Warnings(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Level == config.LevelWarn {
			out = append(out, i)
		}
	}
	return out
}
