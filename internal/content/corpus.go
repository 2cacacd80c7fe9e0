package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Options controls discovery.
type Options struct {
	// Excludes are globs matched against the slash relative path and the base name.
	// A pattern ending in "/" excludes a directory.
	Excludes      []string
	DirectoryURLs bool
}

// Conflict records a source file that was skipped because another file claims its URL.
type Conflict struct {
	Src     string
	Winner  string
	Message string
}

// Corpus is the immutable set of pages and assets found in a docs directory.
type Corpus struct {
	Root          string
	DirectoryURLs bool
	Pages         []*Page
	Assets        []*Asset
	Conflicts     []Conflict

	bySrc   map[string]*Page
	byURL   map[string]*Page
	assets  map[string]*Asset
	dirsURL map[string]bool
}

type fileEntry struct {
	rel string
	abs string
}

// Discover walks docsDir in lexical order. Hidden files and directories are skipped.
// A front-matter block that cannot be parsed fails discovery; all such pages are reported at once.
func Discover(docsDir string, opts Options) (*Corpus, error) {
	info, err := os.Stat(docsDir)
	if err != nil || !info.IsDir() {
		return nil, errors.ValidationError("docs directory does not exist").
			WithContext("path", docsDir).Build()
	}

	var markdown, assets []fileEntry
	walkErr := filepath.WalkDir(docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == docsDir {
			return nil
		}
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			return err
		}
		rel = norm.NFC.String(filepath.ToSlash(rel))
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded(rel, d.IsDir(), opts.Excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if IsMarkdown(rel) {
			markdown = append(markdown, fileEntry{rel: rel, abs: p})
		} else {
			assets = append(assets, fileEntry{rel: rel, abs: p})
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.WrapError(walkErr, errors.CategoryFileSystem, "walk docs directory").
			WithContext("path", docsDir).Build()
	}

	c := &Corpus{
		Root:          docsDir,
		DirectoryURLs: opts.DirectoryURLs,
		bySrc:         make(map[string]*Page),
		byURL:         make(map[string]*Page),
		assets:        make(map[string]*Asset),
		dirsURL:       make(map[string]bool),
	}

	indexDirs := make(map[string]bool)
	for _, f := range markdown {
		if strings.EqualFold(strings.TrimSuffix(path.Base(f.rel), path.Ext(f.rel)), "index") {
			indexDirs[path.Dir(f.rel)] = true
		}
	}

	var broken []string
	for _, f := range markdown {
		page, err := loadPage(f, opts.DirectoryURLs, indexDirs)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", f.rel, err))
			continue
		}
		if page.IsIndex && isReadme(f.rel) && indexDirs[path.Dir(f.rel)] {
			c.Conflicts = append(c.Conflicts, Conflict{
				Src:     f.rel,
				Winner:  path.Join(path.Dir(f.rel), "index.md"),
				Message: "README.md skipped because index.md exists in the same directory",
			})
			continue
		}
		if prev, ok := c.byURL[page.URL]; ok {
			c.Conflicts = append(c.Conflicts, Conflict{
				Src:     f.rel,
				Winner:  prev.Src,
				Message: fmt.Sprintf("URL %q already used by %s", displayURL(page.URL), prev.Src),
			})
			continue
		}
		c.add(page)
	}
	if len(broken) > 0 {
		return nil, errors.ValidationError("malformed front-matter").
			WithContext("pages", broken).Build()
	}

	for _, f := range assets {
		a := &Asset{Src: f.rel, AbsPath: f.abs}
		c.Assets = append(c.Assets, a)
		c.assets[a.Src] = a
	}

	for _, cf := range c.Conflicts {
		slog.Warn("Skipping conflicting page", logfields.Page(cf.Src), slog.String("winner", cf.Winner))
	}
	return c, nil
}

func loadPage(f fileEntry, directoryURLs bool, indexDirs map[string]bool) (*Page, error) {
	raw, err := os.ReadFile(f.abs)
	if err != nil {
		return nil, err
	}
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, err
	}

	index := isIndexName(path.Base(f.rel))
	url, dest := pageLocation(f.rel, directoryURLs, index)

	fp, err := frontmatter.ComputeFingerprint(doc.Fields, doc.Body)
	if err != nil {
		return nil, err
	}
	return &Page{
		Src:         f.rel,
		AbsPath:     f.abs,
		Raw:         raw,
		Fields:      doc.Fields,
		Meta:        doc.Meta,
		Body:        doc.Body,
		Title:       deriveTitle(doc.Meta, doc.Body, f.rel, index),
		URL:         url,
		Dest:        dest,
		IsIndex:     index,
		Fingerprint: fp,
	}, nil
}

func (c *Corpus) add(p *Page) {
	c.Pages = append(c.Pages, p)
	c.bySrc[p.Src] = p
	c.byURL[p.URL] = p
	if p.IsIndex {
		c.dirsURL[p.Dir()] = true
	}
}

func isReadme(rel string) bool {
	return strings.EqualFold(strings.TrimSuffix(path.Base(rel), path.Ext(rel)), "readme")
}

func displayURL(u string) string {
	if u == "" {
		return "/"
	}
	return "/" + u
}

func excluded(rel string, isDir bool, globs []string) bool {
	base := path.Base(rel)
	for _, g := range globs {
		if dirPat, ok := strings.CutSuffix(g, "/"); ok {
			if isDir && (rel == dirPat || matches(dirPat, rel) || matches(dirPat, base)) {
				return true
			}
			continue
		}
		if matches(g, rel) || matches(g, base) {
			return true
		}
	}
	return false
}

func matches(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// Page looks a page up by its source path.
func (c *Corpus) Page(src string) (*Page, bool) {
	p, ok := c.bySrc[norm.NFC.String(strings.TrimPrefix(src, "./"))]
	return p, ok
}

// PageByURL looks a page up by its URL (with or without leading slash).
func (c *Corpus) PageByURL(u string) (*Page, bool) {
	p, ok := c.byURL[strings.TrimPrefix(u, "/")]
	return p, ok
}

// Asset looks an asset up by its source path.
func (c *Corpus) Asset(src string) (*Asset, bool) {
	a, ok := c.assets[strings.TrimPrefix(src, "./")]
	return a, ok
}

// Sources returns every page source path in lexical order.
func (c *Corpus) Sources() []string {
	out := make([]string, 0, len(c.Pages))
	for _, p := range c.Pages {
		out = append(out, p.Src)
	}
	sort.Strings(out)
	return out
}

// HasDirIndex reports whether a directory has an index page.
func (c *Corpus) HasDirIndex(dir string) bool {
	return c.dirsURL[dir]
}
