package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func discover(t *testing.T, files map[string]string, dirURLs bool) *content.Corpus {
	t.Helper()
	dir := testutil.WriteTree(t, t.TempDir(), files)
	c, err := content.Discover(dir, content.Options{DirectoryURLs: dirURLs})
	require.NoError(t, err)
	return c
}

func renderPage(t *testing.T, c *content.Corpus, src string) *Result {
	t.Helper()
	p, ok := c.Page(src)
	require.True(t, ok, src)
	res, err := NewRenderer(c).Render(p, p.Body)
	require.NoError(t, err)
	return res
}

func TestRender_CrossLinksBetweenPages(t *testing.T) {
	c := discover(t, map[string]string{
		"a.md": "# A\n\nSee [B](b.md#usage) and [C](sub/c.md).\n",
		"b.md": "# B\n\n## Usage\n",
		"sub/c.md": "# C\n\n[back](../a.md) ![logo](../img/logo.png) [dir](../sub/)\n",
		"sub/index.md": "# Sub\n",
		"img/logo.png": "png",
	}, false)

	a := renderPage(t, c, "a.md")
	assert.Contains(t, string(a.HTML), `href="b.html#usage"`)
	assert.Contains(t, string(a.HTML), `href="sub/c.html"`)
	require.Len(t, a.Links, 2)
	assert.Equal(t, StatusPage, a.Links[0].Status)
	assert.Equal(t, "b.md", a.Links[0].Target)
	assert.Equal(t, "usage", a.Links[0].Fragment)
	assert.Equal(t, 3, a.Links[0].Line)

	sub := renderPage(t, c, "sub/c.md")
	assert.Contains(t, string(sub.HTML), `href="../a.html"`)
	assert.Contains(t, string(sub.HTML), `src="../img/logo.png"`)
	assert.Contains(t, string(sub.HTML), `href="index.html"`)
}

func TestRender_DirectoryURLs(t *testing.T) {
	c := discover(t, map[string]string{
		"index.md":          "[Guide](guide.md) ![x](img/x.png)\n",
		"guide.md":          "[Home](index.md) [self](#top) ![x](img/x.png)\n",
		"backend/python.md": "[Guide](../guide.md)\n",
		"img/x.png":         "png",
	}, true)

	home := renderPage(t, c, "index.md")
	assert.Contains(t, string(home.HTML), `href="guide/"`)
	assert.Contains(t, string(home.HTML), `src="img/x.png"`)

	guide := renderPage(t, c, "guide.md")
	assert.Contains(t, string(guide.HTML), `href="../"`)
	assert.Contains(t, string(guide.HTML), `src="../img/x.png"`)
	assert.Equal(t, StatusAnchor, guide.Links[1].Status)
	assert.Equal(t, "top", guide.Links[1].Fragment)

	py := renderPage(t, c, "backend/python.md")
	assert.Contains(t, string(py.HTML), `href="../../guide/"`)
}

func TestRender_LinkStatuses(t *testing.T) {
	c := discover(t, map[string]string{
		"a.md": "[x](missing.md) [y](/abs/path) [z](https://example.com) [w](notes.txt) [v](../../escape.md)\n\nhttps://auto.example.com\n",
	}, false)

	res := renderPage(t, c, "a.md")
	statuses := make([]LinkStatus, 0, len(res.Links))
	for _, l := range res.Links {
		statuses = append(statuses, l.Status)
	}
	assert.Equal(t, []LinkStatus{StatusNotFound, StatusAbsolute, StatusExternal, StatusUnrecognized, StatusNotFound, StatusExternal}, statuses)
	assert.Contains(t, string(res.HTML), `href="missing.md"`)
}

func TestRender_HeadingsTOCAndAnchors(t *testing.T) {
	c := discover(t, map[string]string{
		"a.md": "# Python Standards\n\n## Tooling\n\n## Tooling\n\n### Café & `uv`\n\n## Custom {#my-id}\n\nText[^1].\n\n[^1]: Note.\n",
	}, false)

	res := renderPage(t, c, "a.md")
	require.Len(t, res.TOC, 5)
	assert.Equal(t, Heading{Level: 1, ID: "python-standards", Text: "Python Standards"}, res.TOC[0])
	assert.Equal(t, "tooling", res.TOC[1].ID)
	assert.Equal(t, "tooling_1", res.TOC[2].ID)
	assert.Equal(t, "my-id", res.TOC[4].ID)
	assert.Equal(t, "Custom", res.TOC[4].Text)
	for _, id := range []string{"python-standards", "tooling", "tooling_1", "my-id"} {
		assert.True(t, res.Anchors[id], id)
	}
	assert.Contains(t, string(res.HTML), `<h2 id="tooling_1">`)
}

func TestRender_GFMExtensions(t *testing.T) {
	c := discover(t, map[string]string{
		"a.md": "| Tool | Use |\n| --- | --- |\n| ruff | lint |\n\n- [x] done\n\n~~old~~\n\nTerm\n: Definition\n",
	}, false)
	html := string(renderPage(t, c, "a.md").HTML)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `type="checkbox"`)
	assert.Contains(t, html, "<del>old</del>")
	assert.Contains(t, html, "<dl>")
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":        "hello-world",
		"  Spaced  Out  ":    "spaced-out",
		"Café":               "cafe",
		"CI/CD Pipelines":    "cicd-pipelines",
		"snake_case stays":   "snake_case-stays",
		"a -- b":             "a-b",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestHeadingIDsUnique(t *testing.T) {
	ids := newHeadingIDs()
	ids.Put([]byte("intro"))
	assert.Equal(t, "intro_1", ids.unique("intro"))
	assert.Equal(t, "intro_2", ids.unique("intro"))
	assert.Equal(t, "_1", ids.unique(""))
}

func TestExtractLinks(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []Link
	}{
		{"inline", "See [API](api.md) for details.", []Link{{Kind: LinkKindInline, Destination: "api.md"}}},
		{"image", "![Diagram](diagram.png)", []Link{{Kind: LinkKindImage, Destination: "diagram.png"}}},
		{"auto", "<https://example.com/path>", []Link{{Kind: LinkKindAuto, Destination: "https://example.com/path"}}},
		{"reference", "See [API][ref].\n\n[ref]: api.md\n", []Link{
			{Kind: LinkKindInline, Destination: "api.md"},
			{Kind: LinkKindReferenceDefinition, Destination: "api.md"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			links, err := ExtractLinks([]byte(tc.src), Options{})
			require.NoError(t, err)
			require.Equal(t, tc.want, links)
		})
	}
}
