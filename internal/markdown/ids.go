package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns heading text into an anchor: compatibility-decomposed, reduced to ASCII
// word characters, spaces and hyphens, lowercased, and runs of spaces or hyphens joined by one "-".
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	slug := strings.ToLower(strings.TrimSpace(b.String()))
	return dashRuns.ReplaceAllString(slug, "-")
}

var (
	dashRuns = regexp.MustCompile(`[-\s]+`)
	idCount  = regexp.MustCompile(`^(.*)_([0-9]+)$`)
)

// headingIDs implements parser.IDs with "_1", "_2" suffixes for repeated slugs.
type headingIDs struct {
	seen map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{seen: map[string]bool{}}
}

func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.unique(Slugify(string(value))))
}

func (h *headingIDs) Put(value []byte) {
	h.seen[string(value)] = true
}

func (h *headingIDs) unique(id string) string {
	for id == "" || h.seen[id] {
		if m := idCount.FindStringSubmatch(id); m != nil {
			n, _ := strconv.Atoi(m[2])
			id = m[1] + "_" + strconv.Itoa(n+1)
		} else {
			id += "_1"
		}
	}
	h.seen[id] = true
	return id
}
