package theme

import (
	"html/template"
	"os"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/nav"
)

// Site is the site-wide part of every page context.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	Copyright   string
	RepoURL     string
	Language    string
	Palette     map[string]string
	Features    []string
	Search      bool
	BuildDate   string
}

// HasFeature reports whether a theme feature flag is enabled.
func (s Site) HasFeature(name string) bool {
	for _, f := range s.Features {
		if f == name {
			return true
		}
	}
	return false
}

// Link is a resolved hyperlink relative to the current page.
type Link struct {
	Title string
	Href  string
}

// NavEntry is a navigation node rendered for one page.
type NavEntry struct {
	Label    string
	Href     string
	External bool
	Active   bool
	Section  bool
	Children []NavEntry
}

// Page is the page-specific part of the context.
type Page struct {
	Src         string
	Title       string
	Description string
	Content     template.HTML
	TOC         []markdown.Heading
	Meta        map[string]any
	EditURL     string
	Canonical   string
	IsHome      bool
	hide        []string
}

// Hides reports whether the page front-matter hides a layout element (navigation, toc).
func (p Page) Hides(el string) bool {
	for _, h := range p.hide {
		if h == el {
			return true
		}
	}
	return false
}

// PageContext is the data passed to the layout templates.
type PageContext struct {
	Site        Site
	Page        Page
	Nav         []NavEntry
	Previous    *Link
	Next        *Link
	Breadcrumbs []Link
	// BaseURL is the relative path from the page to the site root, always ending in "/".
	BaseURL    string
	LiveReload bool
}

// NewSite builds the site context. The build date is only set with show_build_date;
// SOURCE_DATE_EPOCH pins it for reproducible builds.
func NewSite(cfg *config.Config) Site {
	s := Site{
		Name:        cfg.SiteName,
		URL:         cfg.SiteURL,
		Description: cfg.SiteDescription,
		Author:      cfg.SiteAuthor,
		Copyright:   cfg.Copyright,
		RepoURL:     cfg.RepoURL,
		Language:    cfg.Theme.Language,
		Palette:     cfg.Theme.Palette,
		Features:    cfg.Theme.Features,
		Search:      cfg.Plugins.Search.IsEnabled(),
	}
	if cfg.Theme.ShowBuildDate {
		s.BuildDate = BuildDate(os.Getenv("SOURCE_DATE_EPOCH"), time.Now())
	}
	return s
}

// BuildDate formats epoch (seconds, as in SOURCE_DATE_EPOCH) or now when epoch is empty or invalid.
func BuildDate(epoch string, now time.Time) string {
	if secs, err := strconv.ParseInt(strings.TrimSpace(epoch), 10, 64); err == nil {
		return time.Unix(secs, 0).UTC().Format("2006-01-02")
	}
	return now.UTC().Format("2006-01-02")
}

// ContextOptions carry the per-build inputs of NewPageContext.
type ContextOptions struct {
	Site       Site
	Tree       *nav.Tree
	EditURI    string
	LiveReload bool
}

// NewPageContext assembles the template data for page. rendered may be nil for the 404 page.
func NewPageContext(opts ContextOptions, page *content.Page, rendered *markdown.Result) *PageContext {
	ctx := &PageContext{Site: opts.Site, LiveReload: opts.LiveReload}
	if page == nil {
		ctx.BaseURL = rootPath(opts.Site.URL)
		ctx.Page = Page{Title: "Page not found"}
		ctx.Nav = navEntries(opts.Tree, nil, func(u string) string { return ctx.BaseURL + u })
		return ctx
	}

	rel := func(u string) string { return content.RelativeURL(page.URL, u) }
	ctx.BaseURL = rel("")

	ctx.Page = Page{
		Src:         page.Src,
		Title:       page.Title,
		Description: page.Meta.Description,
		Meta:        page.Fields,
		IsHome:      page.URL == "" || page.URL == "index.html",
		hide:        page.Meta.Hide,
	}
	if ctx.Page.Description == "" {
		ctx.Page.Description = opts.Site.Description
	}
	if rendered != nil {
		// Rendered Markdown is trusted: raw HTML in docs is allowed.
		ctx.Page.Content = template.HTML(rendered.HTML) // #nosec G203 -- docs are authored content
		ctx.Page.TOC = rendered.TOC
	}
	if opts.Site.URL != "" {
		ctx.Page.Canonical = strings.TrimSuffix(opts.Site.URL, "/") + "/" + page.URL
	}
	if opts.Site.RepoURL != "" && opts.EditURI != "" {
		ctx.Page.EditURL = joinURL(joinURL(opts.Site.RepoURL, opts.EditURI), page.Src)
	}

	if opts.Tree != nil {
		ctx.Nav = navEntries(opts.Tree, page, rel)
		prev, next := opts.Tree.Neighbors(page)
		if prev != nil {
			ctx.Previous = &Link{Title: prev.Label, Href: rel(prev.URL)}
		}
		if next != nil {
			ctx.Next = &Link{Title: next.Label, Href: rel(next.URL)}
		}
		for _, n := range opts.Tree.Breadcrumbs(page) {
			l := Link{Title: n.Label}
			if n.Page != nil {
				l.Href = rel(n.URL)
			}
			ctx.Breadcrumbs = append(ctx.Breadcrumbs, l)
		}
	}
	return ctx
}

func navEntries(t *nav.Tree, page *content.Page, rel func(string) string) []NavEntry {
	if t == nil {
		return nil
	}
	var conv func([]*nav.Node) []NavEntry
	conv = func(nodes []*nav.Node) []NavEntry {
		out := make([]NavEntry, 0, len(nodes))
		for _, n := range nodes {
			e := NavEntry{Label: n.Label, External: n.External, Section: n.IsSection()}
			switch {
			case n.External:
				e.Href = n.URL
			case !e.Section:
				e.Href = rel(n.URL)
			}
			if page != nil {
				e.Active = n.Page == page || n.IsAncestorOf(page)
			}
			e.Children = conv(n.Children)
			out = append(out, e)
		}
		return out
	}
	return conv(t.Roots)
}

// rootPath is the URL path of the site root, used by pages served from any depth.
func rootPath(siteURL string) string {
	if i := strings.Index(siteURL, "://"); i >= 0 {
		rest := siteURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			p := rest[j:]
			if !strings.HasSuffix(p, "/") {
				p += "/"
			}
			return p
		}
	}
	return "/"
}

func joinURL(base, rel string) string {
	if rel == "" {
		return base
	}
	if config.IsExternalURL(rel) {
		return rel
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}
