// Package content discovers the Markdown pages and static assets of a docs directory
// and assigns each page its output URL.
package content

import (
	"bufio"
	"bytes"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

// Page is one Markdown source file.
type Page struct {
	// Src is the slash separated path relative to the docs directory.
	Src     string
	AbsPath string
	Raw     []byte
	Fields  map[string]any
	Meta    frontmatter.Meta
	Body    []byte

	Title string
	// URL is relative to the site root: "" for the home page, "guide/" or "guide.html" otherwise.
	URL string
	// Dest is the slash separated output file path relative to the site root.
	Dest        string
	IsIndex     bool
	Fingerprint string
}

// Asset is a non-Markdown file copied verbatim.
type Asset struct {
	Src     string
	AbsPath string
}

// Dir is the slash directory of the source file, "" at the root.
func (p *Page) Dir() string {
	d := path.Dir(p.Src)
	if d == "." {
		return ""
	}
	return d
}

// IsMarkdown reports whether a path names a Markdown source.
func IsMarkdown(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".md" || ext == ".markdown"
}

func isIndexName(name string) bool {
	base := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
	return base == "index" || base == "readme"
}

// NotFoundSource is the page that replaces the theme's 404 page.
const NotFoundSource = "404.md"

// Location returns the URL and destination a Markdown source path would get.
func Location(src string, directoryURLs bool) (url, dest string) {
	return pageLocation(src, directoryURLs, isIndexName(path.Base(src)))
}

// pageLocation derives URL and destination for a Markdown source path.
// A top-level 404.md always becomes 404.html so static hosts serve it for missing paths.
func pageLocation(src string, directoryURLs, index bool) (url, dest string) {
	if src == NotFoundSource {
		return "404.html", "404.html"
	}
	dir := path.Dir(src)
	if dir == "." {
		dir = ""
	}
	stem := strings.TrimSuffix(path.Base(src), path.Ext(src))

	if index {
		if dir == "" {
			dest = "index.html"
		} else {
			dest = dir + "/index.html"
		}
		if directoryURLs {
			if dir == "" {
				return "", dest
			}
			return dir + "/", dest
		}
		return dest, dest
	}

	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}
	if directoryURLs {
		return prefix + stem + "/", prefix + stem + "/index.html"
	}
	return prefix + stem + ".html", prefix + stem + ".html"
}

// deriveTitle picks the front-matter title, then the first level one heading, then the file name.
func deriveTitle(meta frontmatter.Meta, body []byte, src string, index bool) string {
	if t := strings.TrimSpace(meta.Title); t != "" {
		return t
	}
	if t := FirstHeading(body); t != "" {
		return t
	}
	name := strings.TrimSuffix(path.Base(src), path.Ext(src))
	if index {
		dir := path.Base(path.Dir(src))
		if dir == "." || dir == "/" {
			return "Home"
		}
		name = dir
	}
	return TitleFromName(name)
}

// TitleFromName turns a file or directory name such as "data-platform" into "Data Platform".
func TitleFromName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// FirstHeading returns the text of the first ATX level one heading outside fenced code.
func FirstHeading(body []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fence := ""
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimLeft(line, " ")
		if f := fenceMarker(trimmed); f != "" {
			switch {
			case fence == "":
				fence = f
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || len(line)-len(trimmed) > 3 {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") || trimmed == "#" {
			t := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			t = strings.TrimSpace(strings.TrimRight(t, "#"))
			// Strip a trailing attribute block such as {#custom-id}.
			if i := strings.LastIndex(t, " {"); i >= 0 && strings.HasSuffix(t, "}") {
				t = strings.TrimSpace(t[:i])
			}
			if t != "" {
				return t
			}
		}
	}
	return ""
}

func fenceMarker(line string) string {
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, m) {
			n := len(line) - len(strings.TrimLeft(line, m[:1]))
			return strings.Repeat(m[:1], n)
		}
	}
	return ""
}
