package redirects

import (
	"bytes"
	"html/template"
	"path"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/content"
)

// Stub is a generated redirect page.
type Stub struct {
	From string
	// Dest is the output file path relative to the site root.
	Dest    string
	Href    string
	Content []byte
}

var stubTemplate = template.Must(template.New("redirect").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Redirecting...</title>
<link rel="canonical" href="{{.Canonical}}">
<meta name="robots" content="noindex">
<script>var anchor=window.location.hash.substr(1);location.replace({{.Href}}+(anchor?"#"+anchor:""));</script>
<meta http-equiv="refresh" content="0; url={{.Href}}">
</head>
<body>
Redirecting to <a href="{{.Href}}">{{.Href}}</a>...
</body>
</html>
`))

// StubHTML renders a redirect page pointing at href. canonical defaults to href.
func StubHTML(href, canonical string) []byte {
	if canonical == "" {
		canonical = href
	}
	var buf bytes.Buffer
	// The template only interpolates strings; execution cannot fail.
	_ = stubTemplate.Execute(&buf, struct{ Href, Canonical string }{href, canonical})
	return buf.Bytes()
}

// Stubs renders one page per rule at the location the old source would have had.
// Internal targets are linked relatively; siteURL, when set, makes the canonical link absolute.
func (s *Set) Stubs(corpus *content.Corpus, siteURL string) []Stub {
	var out []Stub
	for _, r := range s.Rules() {
		fromURL, dest := r.From, r.From
		if content.IsMarkdown(r.From) {
			fromURL, dest = content.Location(r.From, corpus.DirectoryURLs)
		}

		href, canonical := r.To, r.To
		if !r.External() {
			src, frag, _ := strings.Cut(r.To, "#")
			page, ok := corpus.Page(src)
			if !ok {
				continue
			}
			href = content.RelativeURL(fromURL, page.URL)
			canonical = href
			if siteURL != "" {
				canonical = strings.TrimSuffix(siteURL, "/") + "/" + page.URL
			}
			if frag != "" {
				href += "#" + frag
				canonical += "#" + frag
			}
		}
		out = append(out, Stub{From: r.From, Dest: path.Clean(dest), Href: href, Content: StubHTML(href, canonical)})
	}
	return out
}
