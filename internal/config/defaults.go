package config

import "time"

// Defaults applied after normalization.
const (
	DefaultDocsDir      = "docs"
	DefaultSiteDir      = "site"
	DefaultReportDir    = ".docsite"
	DefaultThemeName    = "default"
	DefaultLanguage     = "en"
	DefaultServeAddr    = "127.0.0.1:8000"
	DefaultPublishDir   = "public"
	DefaultBranch       = "gh-pages"
	DefaultRemoteName   = "origin"
	DefaultTokenEnv     = "GITHUB_TOKEN"
	DefaultLintConfig   = ".docsite-lint.toml"
	DefaultKVBucket     = "docsite-links"
	DefaultSeparator    = `[\s\-]+`
	DefaultCommitFormat = "Deployed %s with docsite"
)

func applyDefaults(c *Config) {
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.SiteDir == "" {
		c.SiteDir = DefaultSiteDir
	}
	if c.ReportDir == "" {
		c.ReportDir = DefaultReportDir
	}

	if c.Theme.Name == "" {
		c.Theme.Name = DefaultThemeName
	}
	if c.Theme.Language == "" {
		c.Theme.Language = DefaultLanguage
	}

	if c.Plugins.Search.Lang == "" {
		c.Plugins.Search.Lang = c.Theme.Language
	}
	if c.Plugins.Search.Separator == "" {
		c.Plugins.Search.Separator = DefaultSeparator
	}
	if c.Plugins.Macros.OnUndefined == "" {
		c.Plugins.Macros.OnUndefined = UndefinedStrict
	}

	v := &c.Validation
	setLevel(&v.Nav.OmittedFiles, LevelInfo)
	setLevel(&v.Nav.NotFound, LevelWarn)
	setLevel(&v.Links.NotFound, LevelWarn)
	setLevel(&v.Links.Anchors, LevelInfo)
	setLevel(&v.Links.AbsoluteLinks, LevelInfo)
	setLevel(&v.Links.UnrecognizedLinks, LevelInfo)

	lc := &c.LinkCheck
	if lc.Timeout == 0 {
		lc.Timeout = Duration(10 * time.Second)
	}
	if lc.Concurrency == 0 {
		lc.Concurrency = 8
	}
	if lc.Cache == "" {
		lc.Cache = CacheMemory
	}
	if lc.Cache == CacheSQLite && lc.SQLitePath == "" {
		lc.SQLitePath = c.ReportDir + "/links.db"
	}
	if lc.KVBucket == "" {
		lc.KVBucket = DefaultKVBucket
	}
	if lc.TTL == 0 {
		lc.TTL = Duration(24 * time.Hour)
	}
	if lc.FailureTTL == 0 {
		lc.FailureTTL = Duration(time.Hour)
	}
	if lc.UserAgent == "" {
		lc.UserAgent = "docsite-linkcheck"
	}
	if lc.Retry.Backoff == "" {
		lc.Retry.Backoff = RetryBackoffLinear
	}

	if c.Versioning.PublishDir == "" {
		c.Versioning.PublishDir = DefaultPublishDir
	}
	if c.Versioning.AliasType == "" {
		c.Versioning.AliasType = AliasRedirect
	}

	p := &c.Publish
	if p.RemoteName == "" {
		p.RemoteName = DefaultRemoteName
	}
	if p.Branch == "" {
		p.Branch = DefaultBranch
	}
	if p.Message == "" {
		p.Message = DefaultCommitFormat
	}
	if p.TokenEnv == "" {
		p.TokenEnv = DefaultTokenEnv
	}
	if p.Username == "" {
		p.Username = "x-access-token"
	}
	if p.AuthorName == "" {
		p.AuthorName = "docsite"
	}
	if p.AuthorEmail == "" {
		p.AuthorEmail = "docsite@localhost"
	}

	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultServeAddr
	}
	if c.Lint.Config == "" {
		c.Lint.Config = DefaultLintConfig
	}
}

func setLevel(l *Level, def Level) {
	if *l == "" {
		*l = def
	}
}

// Default returns a configuration with every default applied, anchored at dir.
// It is what code paths without a config file (tests, scaffolding) start from.
func Default(siteName, dir string) *Config {
	c := &Config{SiteName: siteName}
	c.SetBaseDir(dir)
	applyDefaults(c)
	return c
}
