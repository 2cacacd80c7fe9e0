package macros

import (
	"fmt"
	"log/slog"
	"maps"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Options configure an Engine.
type Options struct {
	Extra       map[string]any
	Site        map[string]any
	DataDir     string
	IncludeDir  string
	OnUndefined config.OnUndefined
}

// Engine renders page bodies over a fixed variable set. It holds no mutable state
// after construction and may be shared.
type Engine struct {
	globals     map[string]any
	includeDir  string
	onUndefined config.OnUndefined
}

// Outcome is the result of rendering one page.
type Outcome struct {
	Body []byte
	// Kept is true when an undefined variable left the page unchanged (on_undefined: keep).
	Kept    bool
	Warning string
}

// New builds an engine. Extra values become top-level variables; data files are added
// under their base name and must not shadow an extra key; "config" and "page" are reserved.
func New(opts Options) (*Engine, error) {
	globals := make(map[string]any, len(opts.Extra)+4)
	maps.Copy(globals, opts.Extra)

	data, err := loadDataDir(opts.DataDir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMacros, "load macro data").
			WithContext("path", opts.DataDir).Build()
	}
	for k, v := range data {
		if _, dup := globals[k]; dup {
			return nil, errors.MacrosError(fmt.Sprintf("data file %q shadows an extra variable", k)).Build()
		}
		globals[k] = v
	}
	for _, reserved := range []string{"config", "page"} {
		if _, dup := globals[reserved]; dup {
			return nil, errors.MacrosError(fmt.Sprintf("variable name %q is reserved", reserved)).Build()
		}
	}
	site := opts.Site
	if site == nil {
		site = map[string]any{}
	}
	globals["config"] = site

	mode := opts.OnUndefined
	if mode == "" {
		mode = config.UndefinedStrict
	}
	return &Engine{globals: globals, includeDir: opts.IncludeDir, onUndefined: mode}, nil
}

// NewFromConfig wires the engine to the macros plugin settings and site metadata.
func NewFromConfig(cfg *config.Config) (*Engine, error) {
	m := cfg.Plugins.Macros
	return New(Options{
		Extra:       cfg.Extra,
		Site:        SiteVars(cfg),
		DataDir:     cfg.Resolve(m.DataDir),
		IncludeDir:  cfg.Resolve(m.IncludeDir),
		OnUndefined: m.OnUndefined,
	})
}

// SiteVars exposes the site metadata available as {{ .config.* }}.
func SiteVars(cfg *config.Config) map[string]any {
	return map[string]any{
		"site_name":        cfg.SiteName,
		"site_url":         cfg.SiteURL,
		"site_description": cfg.SiteDescription,
		"site_author":      cfg.SiteAuthor,
		"copyright":        cfg.Copyright,
		"repo_url":         cfg.RepoURL,
	}
}

// Vars returns a copy of the full variable set for a page.
func (e *Engine) Vars(page map[string]any) map[string]any {
	vars := make(map[string]any, len(e.globals)+1)
	maps.Copy(vars, e.globals)
	if page == nil {
		page = map[string]any{}
	}
	vars["page"] = page
	return vars
}

// RenderPage substitutes variables in a page body. Code blocks and inline code are left
// untouched. An undefined variable is a CategoryMacros error naming the page, unless the
// engine keeps undefined text, in which case the body is returned unchanged with a warning.
func (e *Engine) RenderPage(src string, body []byte, page map[string]any) (Outcome, error) {
	text, kept := protect(string(body))
	out, err := render(src, text, e.Vars(page), e.funcMap())
	if err != nil {
		if IsUndefined(err) && e.onUndefined == config.UndefinedKeep {
			slog.Warn("Undefined macro variable, keeping page text", logfields.Page(src), logfields.Error(err))
			return Outcome{Body: body, Kept: true, Warning: err.Error()}, nil
		}
		msg := "macro rendering failed"
		if IsUndefined(err) {
			msg = "undefined macro variable"
		}
		return Outcome{}, errors.WrapError(err, errors.CategoryMacros, msg).
			WithContext("page", src).Build()
	}
	return Outcome{Body: []byte(restore(out, kept))}, nil
}
