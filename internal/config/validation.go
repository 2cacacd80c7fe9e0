package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// normalize case-folds enumerations before defaults are applied.
func normalize(c *Config) error {
	levels := []struct {
		name string
		val  *Level
	}{
		{"validation.nav.omitted_files", &c.Validation.Nav.OmittedFiles},
		{"validation.nav.not_found", &c.Validation.Nav.NotFound},
		{"validation.links.not_found", &c.Validation.Links.NotFound},
		{"validation.links.anchors", &c.Validation.Links.Anchors},
		{"validation.links.absolute_links", &c.Validation.Links.AbsoluteLinks},
		{"validation.links.unrecognized_links", &c.Validation.Links.UnrecognizedLinks},
	}
	for _, l := range levels {
		if *l.val == "" {
			continue
		}
		v, err := levelNormalizer.NormalizeWithError(string(*l.val))
		if err != nil {
			return invalid(l.name, err)
		}
		*l.val = v
	}

	if c.LinkCheck.Cache != "" {
		v, err := cacheNormalizer.NormalizeWithError(string(c.LinkCheck.Cache))
		if err != nil {
			return invalid("link_check.cache", err)
		}
		c.LinkCheck.Cache = v
	}
	if c.LinkCheck.Retry.Backoff != "" {
		v, err := backoffNormalizer.NormalizeWithError(string(c.LinkCheck.Retry.Backoff))
		if err != nil {
			return invalid("link_check.retry.backoff", err)
		}
		c.LinkCheck.Retry.Backoff = v
	}
	if c.Versioning.AliasType != "" {
		v, err := aliasNormalizer.NormalizeWithError(string(c.Versioning.AliasType))
		if err != nil {
			return invalid("versioning.alias_type", err)
		}
		c.Versioning.AliasType = v
	}
	if c.Plugins.Macros.OnUndefined != "" {
		v, err := undefinedNormalizer.NormalizeWithError(string(c.Plugins.Macros.OnUndefined))
		if err != nil {
			return invalid("plugins.macros.on_undefined", err)
		}
		c.Plugins.Macros.OnUndefined = v
	}
	return nil
}

func invalid(field string, err error) error {
	return errors.WrapError(err, errors.CategoryValidation, "invalid configuration value").
		WithContext("field", field).Build()
}

func invalidf(field, format string, args ...any) error {
	return errors.ValidationError(fmt.Sprintf(format, args...)).WithContext("field", field).Build()
}

// Validate checks semantic constraints that decoding cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SiteName) == "" {
		return invalidf("site_name", "site_name is required")
	}
	if c.SiteURL != "" {
		u, err := url.Parse(c.SiteURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalidf("site_url", "site_url %q must be an absolute URL", c.SiteURL)
		}
	}
	if c.RepoURL != "" && !IsExternalURL(c.RepoURL) {
		return invalidf("repo_url", "repo_url %q must be an absolute URL", c.RepoURL)
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := validateNav(c.Nav, "nav"); err != nil {
		return err
	}
	for src, dst := range c.Plugins.Redirects.RedirectMaps {
		if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
			return invalidf("plugins.redirects.redirect_maps", "redirect entries need both a source and a target")
		}
		if IsExternalURL(src) || strings.HasPrefix(src, "/") {
			return invalidf("plugins.redirects.redirect_maps", "redirect source %q must be a relative docs path", src)
		}
	}
	for _, g := range append(append([]string{}, c.ExcludeDocs...), c.LinkCheck.Ignore...) {
		if _, err := path.Match(g, ""); err != nil {
			return invalidf("exclude_docs", "invalid glob %q: %v", g, err)
		}
	}
	if c.LinkCheck.Concurrency < 1 {
		return invalidf("link_check.concurrency", "link_check.concurrency must be at least 1")
	}
	if c.LinkCheck.Retry.MaxRetries != nil && *c.LinkCheck.Retry.MaxRetries < 0 {
		return invalidf("link_check.retry.max_retries", "max_retries cannot be negative")
	}
	if c.LinkCheck.Cache == CacheNATS && c.LinkCheck.NATSURL == "" {
		return invalidf("link_check.nats_url", "link_check.nats_url is required for the nats cache")
	}
	if c.Versioning.DefaultAlias != "" && strings.ContainsAny(c.Versioning.DefaultAlias, `/\`) {
		return invalidf("versioning.default_alias", "default_alias must be a single path segment")
	}
	return nil
}

func (c *Config) validatePaths() error {
	docs, site := c.DocsPath(), c.SitePath()
	if docs == site {
		return invalidf("site_dir", "docs_dir and site_dir must differ")
	}
	if within(site, docs) {
		return invalidf("site_dir", "site_dir %q must not be inside docs_dir", c.SiteDir)
	}
	if within(docs, site) {
		return invalidf("docs_dir", "docs_dir %q must not be inside site_dir", c.DocsDir)
	}
	report := c.ReportPath()
	if report == site || within(report, site) {
		return invalidf("report_dir", "report_dir %q must not be inside site_dir", c.ReportDir)
	}
	return nil
}

func within(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..")
}

func validateNav(items []NavItem, where string) error {
	for i, it := range items {
		loc := fmt.Sprintf("%s[%d]", where, i)
		if it.Section {
			if strings.TrimSpace(it.Label) == "" {
				return invalidf(loc, "nav section at %s needs a label", loc)
			}
			if err := validateNav(it.Children, loc+"."+it.Label); err != nil {
				return err
			}
			continue
		}
		if it.IsExternal() && it.Label == "" {
			return invalidf(loc, "external nav entry %q needs a label", it.Path)
		}
	}
	return nil
}
