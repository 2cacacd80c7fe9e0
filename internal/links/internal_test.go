package links

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

var defaultLevels = config.LinkValidation{
	NotFound:          config.LevelWarn,
	Anchors:           config.LevelInfo,
	AbsoluteLinks:     config.LevelInfo,
	UnrecognizedLinks: config.LevelInfo,
}

func renderAll(t *testing.T, files map[string]string) []Rendered {
	t.Helper()
	dir := testutil.WriteTree(t, t.TempDir(), files)
	c, err := content.Discover(dir, content.Options{DirectoryURLs: true})
	require.NoError(t, err)
	r := markdown.NewRenderer(c)
	var out []Rendered
	for _, p := range c.Pages {
		res, err := r.Render(p, p.Body)
		require.NoError(t, err)
		out = append(out, Rendered{Src: p.Src, Links: res.Links, Anchors: res.Anchors})
	}
	return out
}

func TestValidate(t *testing.T) {
	pages := renderAll(t, map[string]string{
		"a.md": "# A\n\n[ok](b.md#usage) [bad anchor](b.md#nope) [gone](missing.md)\n\n[abs](/x) [odd](data.csv) [self](#a) [self bad](#zzz)\n",
		"b.md": "# B\n\n## Usage\n",
	})

	issues := Validate(pages, defaultLevels)
	kinds := make([]Kind, 0, len(issues))
	for _, i := range issues {
		assert.Equal(t, "a.md", i.Page)
		kinds = append(kinds, i.Kind)
	}
	assert.ElementsMatch(t, []Kind{KindAnchor, KindNotFound, KindAbsolute, KindUnrecognized, KindAnchor}, kinds)

	warnings := Warnings(issues)
	require.Len(t, warnings, 1)
	assert.Equal(t, KindNotFound, warnings[0].Kind)
	assert.Equal(t, 3, warnings[0].Line)
	assert.Contains(t, warnings[0].String(), "a.md:3:")
	assert.Contains(t, warnings[0].Message, "missing.md")
}

func TestValidate_IgnoredLevelsAreDropped(t *testing.T) {
	pages := renderAll(t, map[string]string{
		"a.md": "[gone](missing.md) [abs](/x)\n",
	})
	levels := defaultLevels
	levels.NotFound = config.LevelIgnore
	levels.AbsoluteLinks = config.LevelIgnore
	assert.Empty(t, Validate(pages, levels))
}

func TestExternalURLs(t *testing.T) {
	pages := renderAll(t, map[string]string{
		"a.md": "[x](https://example.com/a) [y](mailto:me@example.com) https://example.com/a\n",
		"b.md": "[z](http://example.org/)\n",
	})
	assert.Equal(t, []string{"https://example.com/a", "http://example.org/"}, ExternalURLs(pages))
}

func TestCheckSite(t *testing.T) {
	site := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"index.html": `<html><head><link rel="stylesheet" href="assets/site.css"><script src="assets/missing.js"></script></head>
<body id="top"><a href="guide/">Guide</a> <a href="guide/#setup">Setup</a> <a href="guide/#nope">Nope</a>
<a href="https://example.com">ext</a> <a href="#top">top</a> <img src="img/none.png"> <a href="/rooted">r</a></body></html>`,
		"guide/index.html": `<html><body><h2 id="setup">Setup</h2><a href="../index.html">home</a><a href="../../up.html">up</a></body></html>`,
		"assets/site.css":  "body{}",
	})

	issues, err := CheckSite(site)
	require.NoError(t, err)

	var got []string
	for _, i := range issues {
		assert.Equal(t, KindHTML, i.Kind)
		got = append(got, i.Page+" "+i.Link)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"guide/index.html ../../up.html",
		"index.html assets/missing.js",
		"index.html guide/#nope",
		"index.html img/none.png",
	}, got)
}

func TestCheckSite_MissingDir(t *testing.T) {
	_, err := CheckSite(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
