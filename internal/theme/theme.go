// Package theme renders pages into the site layout. The default theme is embedded;
// files in theme.custom_dir replace embedded files of the same name.
package theme

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

//go:embed default
var embedded embed.FS

const (
	mainTemplate     = "main.html"
	notFoundTemplate = "404.html"
)

// File is a static theme file copied into the site.
type File struct {
	Path    string
	Content []byte
}

// Theme is a parsed layout plus its static files.
type Theme struct {
	main     *template.Template
	notFound *template.Template
	files    fs.FS
}

// overlay serves custom files first and falls back to the embedded theme.
type overlay struct {
	custom fs.FS
	base   fs.FS
}

func (o overlay) Open(name string) (fs.File, error) {
	if o.custom != nil {
		if f, err := o.custom.Open(name); err == nil {
			return f, nil
		}
	}
	return o.base.Open(name)
}

// Load prepares the theme selected by cfg. customDir is an absolute path or "".
func Load(cfg config.ThemeConfig, customDir string) (*Theme, error) {
	base, err := fs.Sub(embedded, "default")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "open embedded theme").Build()
	}
	o := overlay{base: base}
	if customDir != "" {
		info, statErr := os.Stat(customDir)
		if statErr != nil || !info.IsDir() {
			return nil, errors.ConfigError("theme.custom_dir does not exist").
				WithContext("path", customDir).Build()
		}
		o.custom = os.DirFS(customDir)
	}

	t := &Theme{files: o}
	if t.main, err = t.parse(mainTemplate); err != nil {
		return nil, err
	}
	if t.notFound, err = t.parse(notFoundTemplate); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Theme) parse(name string) (*template.Template, error) {
	src, err := fs.ReadFile(t.files, name)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "read theme template").
			WithContext("template", name).Build()
	}
	partials, _ := fs.Glob(t.files, "partials/*.html")
	tmpl := template.New(name).Option("missingkey=error")
	if _, err := tmpl.Parse(string(src)); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse theme template").
			WithContext("template", name).Build()
	}
	for _, p := range partials {
		body, err := fs.ReadFile(t.files, p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "read theme partial").
				WithContext("template", p).Build()
		}
		if _, err := tmpl.New(path.Base(p)).Parse(string(body)); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "parse theme partial").
				WithContext("template", p).Build()
		}
	}
	return tmpl, nil
}

// RenderPage renders a content page.
func (t *Theme) RenderPage(ctx *PageContext) ([]byte, error) {
	return execute(t.main, ctx)
}

// RenderNotFound renders the 404 page.
func (t *Theme) RenderNotFound(ctx *PageContext) ([]byte, error) {
	return execute(t.notFound, ctx)
}

func execute(tmpl *template.Template, ctx *PageContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "render theme template").
			WithContext("template", tmpl.Name()).WithContext("page", ctx.Page.Src).Build()
	}
	return buf.Bytes(), nil
}

// Files returns every static file of the theme (everything except templates and
// partials) sorted by path.
func (t *Theme) Files() ([]File, error) {
	names := map[string]bool{}
	collect := func(fsys fs.FS) error {
		if fsys == nil {
			return nil
		}
		return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != "." && (strings.HasPrefix(d.Name(), ".") || p == "partials") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(p, ".html") || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			names[p] = true
			return nil
		})
	}
	o := t.files.(overlay)
	if err := collect(o.base); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "list theme files").Build()
	}
	if err := collect(o.custom); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "list theme files").Build()
	}

	paths := make([]string, 0, len(names))
	for p := range names {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]File, 0, len(paths))
	for _, p := range paths {
		b, err := fs.ReadFile(t.files, p)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "read theme file").
				WithContext("path", p).Build()
		}
		out = append(out, File{Path: p, Content: b})
	}
	return out, nil
}
