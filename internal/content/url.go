package content

import (
	"path"
	"strings"
)

// RelativeURL returns the link from a page at URL from to the site URL to.
// Both are site root relative ("" is the home page, directory URLs end in "/").
func RelativeURL(from, to string) string {
	baseDir := from[:strings.LastIndex(from, "/")+1]
	targetDir := to[:strings.LastIndex(to, "/")+1]
	file := to[len(targetDir):]

	bs := segments(baseDir)
	ts := segments(targetDir)
	i := 0
	for i < len(bs) && i < len(ts) && bs[i] == ts[i] {
		i++
	}

	var b strings.Builder
	for range bs[i:] {
		b.WriteString("../")
	}
	for _, s := range ts[i:] {
		b.WriteString(s)
		b.WriteByte('/')
	}
	b.WriteString(file)
	if b.Len() == 0 {
		return "./"
	}
	return b.String()
}

func segments(dir string) []string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return nil
	}
	return strings.Split(dir, "/")
}

// ResolveSource resolves a relative link target written in the page at src to a
// slash path relative to the docs root. ok is false when the link escapes the docs root.
func ResolveSource(src, target string) (string, bool) {
	if strings.HasPrefix(target, "/") {
		return "", false
	}
	dir := path.Dir(src)
	joined := path.Join(dir, target)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	if joined == "." {
		joined = ""
	}
	return joined, true
}
