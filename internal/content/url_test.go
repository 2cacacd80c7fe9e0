package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativeURL(t *testing.T) {
	cases := []struct{ from, to, want string }{
		{"", "guide/", "guide/"},
		{"guide/", "", "../"},
		{"guide/setup/", "", "../../"},
		{"guide/setup/", "guide/other/", "../other/"},
		{"guide/", "guide/", "./"},
		{"a.html", "b.html", "b.html"},
		{"sub/a.html", "b.html", "../b.html"},
		{"sub/a.html", "sub/b.html", "b.html"},
		{"", "assets/style.css", "assets/style.css"},
		{"x/y/", "assets/style.css", "../../assets/style.css"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RelativeURL(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestResolveSource(t *testing.T) {
	got, ok := ResolveSource("backend/python.md", "../ci-cd/index.md")
	assert.True(t, ok)
	assert.Equal(t, "ci-cd/index.md", got)

	got, ok = ResolveSource("a.md", "b.md")
	assert.True(t, ok)
	assert.Equal(t, "b.md", got)

	_, ok = ResolveSource("a.md", "../outside.md")
	assert.False(t, ok)
	_, ok = ResolveSource("a.md", "/abs.md")
	assert.False(t, ok)
}

func TestTitles(t *testing.T) {
	assert.Equal(t, "Data Platform", TitleFromName("data-platform"))
	assert.Equal(t, "Ai Ml", TitleFromName("ai_ml"))
	assert.Equal(t, "Real Title", FirstHeading([]byte("```\n# not this\n```\n\n# Real Title {#id}\n")))
	assert.Equal(t, "", FirstHeading([]byte("## Only h2\n")))
}

func TestLocation(t *testing.T) {
	cases := []struct {
		name          string
		src           string
		directoryURLs bool
		url, dest     string
	}{
		{"directory page", "guide/setup.md", true, "guide/setup/", "guide/setup/index.html"},
		{"flat page", "guide/setup.md", false, "guide/setup.html", "guide/setup.html"},
		{"root index", "index.md", true, "", "index.html"},
		{"not found page with directory urls", "404.md", true, "404.html", "404.html"},
		{"not found page flat", "404.md", false, "404.html", "404.html"},
		{"nested 404 is an ordinary page", "guide/404.md", true, "guide/404/", "guide/404/index.html"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			url, dest := Location(c.src, c.directoryURLs)
			assert.Equal(t, c.url, url)
			assert.Equal(t, c.dest, dest)
		})
	}
}
