package markdown

import (
	"bytes"

	"golang.org/x/net/html"
)

// collectIDs returns every id (and legacy a[name]) attribute in an HTML fragment.
func collectIDs(fragment []byte) map[string]bool {
	ids := map[string]bool{}
	z := html.NewTokenizer(bytes.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ids
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "id" || (string(key) == "name" && string(name) == "a") {
					if len(val) > 0 {
						ids[string(val)] = true
					}
				}
			}
		}
	}
}
