package theme

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func fixture(t *testing.T) (*content.Corpus, *nav.Tree) {
	t.Helper()
	dir := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"index.md":          "# Home\n",
		"backend/index.md":  "# Backend\n",
		"backend/python.md": "---\nhide: [toc]\n---\n# Python\n\n## Tooling\n",
		"guide.md":          "# Guide\n",
	})
	c, err := content.Discover(dir, content.Options{DirectoryURLs: true})
	require.NoError(t, err)
	tree, _, err := nav.Build([]config.NavItem{
		{Label: "Home", Path: "index.md"},
		{Label: "Backend", Section: true, Children: []config.NavItem{
			{Path: "backend/index.md"},
			{Label: "Python", Path: "backend/python.md"},
		}},
		{Label: "Guide", Path: "guide.md"},
		{Label: "Issues", Path: "https://example.com/issues"},
	}, c)
	require.NoError(t, err)
	return c, tree
}

func renderWith(t *testing.T, th *Theme, opts ContextOptions, c *content.Corpus, src string) string {
	t.Helper()
	p, ok := c.Page(src)
	require.True(t, ok)
	res, err := markdown.NewRenderer(c).Render(p, p.Body)
	require.NoError(t, err)
	out, err := th.RenderPage(NewPageContext(opts, p, res))
	require.NoError(t, err)
	return string(out)
}

func TestRenderPage(t *testing.T) {
	c, tree := fixture(t)
	th, err := Load(config.ThemeConfig{}, "")
	require.NoError(t, err)

	site := Site{Name: "Standards", URL: "https://standards.example.com/", RepoURL: "https://github.com/org/standards", Search: true}
	opts := ContextOptions{Site: site, Tree: tree, EditURI: "edit/main/docs/"}
	html := renderWith(t, th, opts, c, "backend/python.md")

	assert.Contains(t, html, "<title>Python - Standards</title>")
	assert.Contains(t, html, `<link rel="stylesheet" href="../../assets/docsite.css">`)
	assert.Contains(t, html, `<link rel="canonical" href="https://standards.example.com/backend/python/">`)
	assert.Contains(t, html, `href="https://github.com/org/standards/edit/main/docs/backend/python.md"`)
	assert.Contains(t, html, `<li class="active section">`)
	assert.Contains(t, html, `<a href="../../guide/">Guide</a>`)
	assert.Contains(t, html, `rel="prev">&larr; Backend</a>`)
	assert.Contains(t, html, `rel="next">Guide &rarr;</a>`)
	assert.Contains(t, html, `<a href="https://example.com/issues" rel="noopener">Issues</a>`)
	assert.Contains(t, html, `<script src="../../assets/search.js">`)
	assert.NotContains(t, html, `class="toc"`, "hidden by front-matter")
	assert.NotContains(t, html, "EventSource")

	home := renderWith(t, th, opts, c, "index.md")
	assert.Contains(t, home, "<title>Standards</title>")
	assert.Contains(t, home, `href="./assets/docsite.css"`)

	opts.LiveReload = true
	assert.Contains(t, renderWith(t, th, opts, c, "guide.md"), `new EventSource("/livereload")`)
}

func TestRenderNotFound(t *testing.T) {
	_, tree := fixture(t)
	th, err := Load(config.ThemeConfig{}, "")
	require.NoError(t, err)

	out, err := th.RenderNotFound(NewPageContext(ContextOptions{Site: Site{Name: "S", URL: "https://example.com/docs"}, Tree: tree}, nil, nil))
	require.NoError(t, err)
	assert.Contains(t, string(out), `href="/docs/assets/docsite.css"`)
	assert.Contains(t, string(out), `<a href="/docs/guide/">Guide</a>`)
}

func TestCustomDirOverrides(t *testing.T) {
	custom := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"main.html":        `{{define "x"}}{{end}}<h1>{{.Page.Title}}</h1>{{.Page.Content}}`,
		"assets/extra.css": "x{}",
		"assets/docsite.css": "custom{}",
	})
	c, tree := fixture(t)
	th, err := Load(config.ThemeConfig{CustomDir: "overrides"}, custom)
	require.NoError(t, err)

	html := renderWith(t, th, ContextOptions{Tree: tree}, c, "guide.md")
	assert.Contains(t, html, "<h1>Guide</h1>")

	files, err := th.Files()
	require.NoError(t, err)
	var paths []string
	contents := map[string]string{}
	for _, f := range files {
		paths = append(paths, f.Path)
		contents[f.Path] = string(f.Content)
	}
	assert.Equal(t, []string{"assets/docsite.css", "assets/extra.css", "assets/search.js"}, paths)
	assert.Equal(t, "custom{}", contents["assets/docsite.css"])
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(config.ThemeConfig{}, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	bad := testutil.WriteTree(t, t.TempDir(), map[string]string{"main.html": "{{.Page.Title"})
	_, err = Load(config.ThemeConfig{}, bad)
	require.Error(t, err)
}

func TestBuildDate(t *testing.T) {
	now := time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-04", BuildDate("", now))
	assert.Equal(t, "2023-11-14", BuildDate("1700000000", now))
	assert.Equal(t, "2026-03-04", BuildDate("soon", now))
}

func TestNewSite(t *testing.T) {
	t.Setenv("SOURCE_DATE_EPOCH", "1700000000")
	cfg := config.Default("Standards", t.TempDir())
	assert.Empty(t, NewSite(cfg).BuildDate)
	cfg.Theme.ShowBuildDate = true
	s := NewSite(cfg)
	assert.Equal(t, "2023-11-14", s.BuildDate)
	assert.True(t, s.Search)
}
