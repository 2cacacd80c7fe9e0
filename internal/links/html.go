package links

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// HTMLLink is a URL reference found in a generated HTML file.
type HTMLLink struct {
	URL  string
	Tag  string
	Attr string
	Line int
}

// linkAttrs lists the element attributes that reference other files.
var linkAttrs = map[string]string{
	"a":      "href",
	"img":    "src",
	"link":   "href",
	"script": "src",
}

// ExtractHTML returns the links and element ids of an HTML document.
func ExtractHTML(r io.Reader) ([]HTMLLink, map[string]bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}
	var out []HTMLLink
	ids := make(map[string]bool)
	line := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			line++
			for _, a := range n.Attr {
				if a.Key == "id" || (n.Data == "a" && a.Key == "name") {
					ids[a.Val] = true
				}
			}
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					out = append(out, HTMLLink{URL: v, Tag: n.Data, Attr: attr, Line: line})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, ids, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

type htmlFile struct {
	links []HTMLLink
	ids   map[string]bool
}

// CheckSite parses every .html file below siteDir and resolves its relative links
// against the output tree, including fragments into other generated pages.
// Line numbers count elements, not source lines.
func CheckSite(siteDir string) ([]Issue, error) {
	files := make(map[string]*htmlFile)
	exists := make(map[string]bool)
	err := filepath.WalkDir(siteDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(siteDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		exists[rel] = true
		if !strings.HasSuffix(rel, ".html") {
			return nil
		}
		f, err := os.Open(p) // #nosec G304 -- path comes from walking the site directory
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		links, ids, err := ExtractHTML(f)
		if err != nil {
			return err
		}
		files[rel] = &htmlFile{links: links, ids: ids}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "scan generated site").
			WithContext("path", siteDir).Build()
	}

	var issues []Issue
	for rel, f := range files {
		for _, l := range f.links {
			if msg := checkHTMLLink(rel, l.URL, exists, files); msg != "" {
				issues = append(issues, Issue{
					Kind: KindHTML, Level: config.LevelWarn, Page: rel, Link: l.URL, Line: l.Line,
					Message: fmt.Sprintf("<%s %s=%q>: %s", l.Tag, l.Attr, l.URL, msg),
				})
			}
		}
	}
	Sort(issues)
	return issues, nil
}

// checkHTMLLink returns a description of what is wrong with a link, or "".
func checkHTMLLink(from, raw string, exists map[string]bool, files map[string]*htmlFile) string {
	if raw == "" || config.IsExternalURL(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "malformed URL"
	}
	if strings.HasPrefix(u.Path, "/") {
		// Site-absolute links depend on where the site is hosted.
		return ""
	}

	target := from
	if u.Path != "" {
		target = path.Join(path.Dir(from), u.Path)
		if target == ".." || strings.HasPrefix(target, "../") {
			return "points outside the site"
		}
		if target == "." {
			target = ""
		}
		switch {
		case exists[target]:
		case exists[path.Join(target, "index.html")]:
			target = path.Join(target, "index.html")
		default:
			return "target does not exist"
		}
	}

	if u.Fragment != "" {
		if f, ok := files[target]; ok && !f.ids[u.Fragment] {
			return fmt.Sprintf("anchor #%s is not defined in %s", u.Fragment, target)
		}
	}
	return ""
}
