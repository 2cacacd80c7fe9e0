package build

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/links"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/macros"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/redirects"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/sitemap"
	"git.home.luguber.info/inful/docsite/internal/theme"
)

const notFoundPage = "404.html"

func (r *run) discover(_ context.Context) error {
	corpus, err := content.Discover(r.cfg.DocsPath(), content.Options{
		Excludes:      r.cfg.ExcludeDocs,
		DirectoryURLs: r.cfg.DirectoryURLs(),
	})
	if err != nil {
		return err
	}
	r.corpus = corpus
	for _, c := range corpus.Conflicts {
		r.report.addIssue(StageDiscover, SeverityWarning, "conflict", c.Src, c.Message)
	}
	m, err := corpus.Manifest()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "hash docs").Build()
	}
	r.report.SourceHash = m.Hash
	r.report.Pages = len(corpus.Pages)
	r.report.Assets = len(corpus.Assets)
	slog.Info("Discovered docs", logfields.Count(len(corpus.Pages)), slog.Int("assets", len(corpus.Assets)))
	return nil
}

func (r *run) navigation(_ context.Context) error {
	if len(r.cfg.Nav) == 0 {
		r.tree = nav.Auto(r.corpus)
	} else {
		tree, findings, err := nav.Build(r.cfg.Nav, r.corpus)
		if err != nil {
			if ce, ok := errors.AsClassified(err); ok {
				if missing, ok := ce.Context().Get("missing"); ok {
					if refs, ok := missing.([]string); ok {
						for _, ref := range refs {
							r.report.addIssue(StageNav, SeverityError, "nav_missing", "", ref)
						}
					}
				}
			}
			return err
		}
		r.tree = tree
		for _, f := range findings {
			r.levelIssue(StageNav, r.cfg.Validation.Nav.NotFound, "nav_not_found", "",
				fmt.Sprintf("nav entry %q points to %s, which is neither a page nor an asset", f.Label, f.Target))
		}
	}
	omitted := nav.Omitted(r.tree, r.corpus)
	for _, p := range omitted {
		if p.Src == content.NotFoundSource {
			continue
		}
		r.levelIssue(StageNav, r.cfg.Validation.Nav.OmittedFiles, "nav_omitted", p.Src,
			"page exists in the docs directory but is not included in the nav")
	}
	return nil
}


func (r *run) loadRedirects(_ context.Context) error {
	set, err := redirects.Load(r.cfg.Plugins.Redirects.RedirectMaps)
	if err != nil {
		return err
	}
	if err := set.Validate(r.corpus); err != nil {
		return err
	}
	r.redirects = set
	r.report.Redirects = set.Len()
	return nil
}

// macros substitutes variables in pages that opt in. The engine is created on first use
// so sites without macros never read the data directory.
func (r *run) macros(ctx context.Context) error {
	var engine *macros.Engine
	for _, p := range r.corpus.Pages {
		r.bodies[p.Src] = p.Body
		if !p.Meta.MacrosEnabled(r.cfg.Plugins.Macros.Enabled) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if engine == nil {
			e, err := macros.NewFromConfig(r.cfg)
			if err != nil {
				return err
			}
			engine = e
		}
		out, err := engine.RenderPage(p.Src, p.Body, pageVars(p))
		if err != nil {
			return err
		}
		if out.Kept {
			r.report.addIssue(StageMacros, SeverityWarning, "macro_undefined", p.Src, out.Warning)
			continue
		}
		r.bodies[p.Src] = out.Body
	}
	return nil
}

// pageVars is the {{ .page }} value: the front-matter fields plus title and url.
func pageVars(p *content.Page) map[string]any {
	vars := make(map[string]any, len(p.Fields)+3)
	maps.Copy(vars, p.Fields)
	vars["title"] = p.Title
	vars["url"] = p.URL
	vars["src"] = p.Src
	return vars
}

func (r *run) render(ctx context.Context) error {
	renderer := markdown.NewRenderer(r.corpus)
	r.pages = make([]links.Rendered, 0, len(r.corpus.Pages))
	for _, p := range r.corpus.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := renderer.Render(p, r.bodies[p.Src])
		if err != nil {
			return err
		}
		r.rendered[p.Src] = res
		r.pages = append(r.pages, links.Rendered{Src: p.Src, Links: res.Links, Anchors: res.Anchors})
	}
	r.recorder.AddPagesRendered(len(r.pages))

	issues := links.Validate(r.pages, r.cfg.Validation.Links)
	for _, i := range issues {
		r.levelIssue(StageRender, i.Level, string(i.Kind), i.Page, i.String())
	}
	for kind, n := range links.CountByKind(issues) {
		r.recorder.AddLinkIssues(string(kind), n)
	}
	if n := len(links.Warnings(issues)); n > 0 {
		slog.Warn("Internal link problems", logfields.Count(n))
	}
	return nil
}

// assets copies theme files, then docs assets. A docs asset replaces a theme file with
// the same path.
func (r *run) assets(_ context.Context) error {
	customDir := ""
	if r.cfg.Theme.CustomDir != "" {
		customDir = r.cfg.Resolve(r.cfg.Theme.CustomDir)
	}
	t, err := theme.Load(r.cfg.Theme, customDir)
	if err != nil {
		return err
	}
	r.theme = t

	if err := r.ws.Create(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create staging directory").Build()
	}
	r.out = newOutput(r.ws.Path())

	files, err := t.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := r.out.write(f.Path, f.Content, producerTheme); err != nil {
			return err
		}
	}
	for _, a := range r.corpus.Assets {
		if err := r.out.copyFile(a.Src, a.AbsPath, producerAsset); err != nil {
			return err
		}
	}
	return nil
}

const (
	producerTheme    = "theme"
	producerAsset    = "asset"
	producerPage     = "page"
	producerRedirect = "redirect"
)

// search indexes pages in nav order, then the pages outside the nav.
func (r *run) search(_ context.Context) error {
	sp := r.cfg.Plugins.Search
	if !sp.IsEnabled() {
		return nil
	}
	ix := search.New(sp.Lang, sp.Separator)
	for _, p := range r.readingOrder() {
		ix.Add(p, r.rendered[p.Src].HTML)
	}
	data, err := ix.JSON()
	if err != nil {
		return err
	}
	return r.out.write(search.IndexPath, data, producerTheme)
}

func (r *run) readingOrder() []*content.Page {
	var out []*content.Page
	for _, n := range r.tree.Flatten() {
		out = append(out, n.Page)
	}
	return append(out, nav.Omitted(r.tree, r.corpus)...)
}

func (r *run) sitemap(_ context.Context) error {
	if r.cfg.SiteURL == "" {
		return nil
	}
	data, err := sitemap.Build(r.cfg.SiteURL, r.corpus.Pages)
	if err != nil {
		return err
	}
	gz, err := sitemap.Gzip(data)
	if err != nil {
		return err
	}
	if err := r.out.write("sitemap.xml", data, producerTheme); err != nil {
		return err
	}
	return r.out.write("sitemap.xml.gz", gz, producerTheme)
}

func (r *run) write(ctx context.Context) error {
	opts := theme.ContextOptions{
		Site:       theme.NewSite(r.cfg),
		Tree:       r.tree,
		EditURI:    r.cfg.EditURI,
		LiveReload: r.live,
	}
	for _, p := range r.corpus.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		html, err := r.theme.RenderPage(theme.NewPageContext(opts, p, r.rendered[p.Src]))
		if err != nil {
			return err
		}
		if by, ok := r.out.has(p.Dest); ok && by == producerAsset {
			r.warn(StageWrite, "output_conflict", p.Src, fmt.Sprintf("page output %s replaces a docs asset", p.Dest))
		}
		if err := r.out.write(p.Dest, html, producerPage); err != nil {
			return err
		}
	}

	if _, ok := r.out.has(notFoundPage); !ok {
		html, err := r.theme.RenderNotFound(theme.NewPageContext(opts, nil, nil))
		if err != nil {
			return err
		}
		if err := r.out.write(notFoundPage, html, producerTheme); err != nil {
			return err
		}
	}

	for _, s := range r.redirects.Stubs(r.corpus, r.cfg.SiteURL) {
		if by, ok := r.out.has(s.Dest); ok {
			r.warn(StageWrite, "redirect_conflict", s.From,
				fmt.Sprintf("redirect stub %s skipped: the file is already written by a %s", s.Dest, by))
			continue
		}
		if err := r.out.write(s.Dest, s.Content, producerRedirect); err != nil {
			return err
		}
	}

	if err := r.strictError(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := ScanOutput(r.ws.Path())
	if err != nil {
		return err
	}
	r.manifest = m
	r.report.OutputFiles = len(m.Files)
	r.report.OutputHash = m.Hash
	if err := m.persist(r.cfg.ReportPath()); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write output manifest").Build()
	}
	return swap(r.ws, r.cfg.SitePath())
}
