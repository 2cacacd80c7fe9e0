package config

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultFileName is the configuration file looked up when no explicit path is given.
const DefaultFileName = "docsite.yml"

// Config represents the site configuration.
type Config struct {
	SiteName         string           `yaml:"site_name"`
	SiteURL          string           `yaml:"site_url,omitempty"`
	SiteDescription  string           `yaml:"site_description,omitempty"`
	SiteAuthor       string           `yaml:"site_author,omitempty"`
	Copyright        string           `yaml:"copyright,omitempty"`
	RepoURL          string           `yaml:"repo_url,omitempty"`
	EditURI          string           `yaml:"edit_uri,omitempty"`
	DocsDir          string           `yaml:"docs_dir,omitempty"`
	SiteDir          string           `yaml:"site_dir,omitempty"`
	UseDirectoryURLs *bool            `yaml:"use_directory_urls,omitempty"`
	Strict           bool             `yaml:"strict,omitempty"`
	Theme            ThemeConfig      `yaml:"theme,omitempty"`
	Nav              []NavItem        `yaml:"nav,omitempty"`
	ExcludeDocs      []string         `yaml:"exclude_docs,omitempty"`
	Plugins          PluginsConfig    `yaml:"plugins,omitempty"`
	Extra            map[string]any   `yaml:"extra,omitempty"`
	Validation       ValidationConfig `yaml:"validation,omitempty"`
	LinkCheck        LinkCheckConfig  `yaml:"link_check,omitempty"`
	Versioning       VersioningConfig `yaml:"versioning,omitempty"`
	Publish          PublishConfig    `yaml:"publish,omitempty"`
	Serve            ServeConfig      `yaml:"serve,omitempty"`
	Lint             LintConfig       `yaml:"lint,omitempty"`
	ReportDir        string           `yaml:"report_dir,omitempty"`

	// path is the absolute location of the loaded file; relative directories resolve against it.
	path string
}

// ThemeConfig selects and tunes the HTML theme.
type ThemeConfig struct {
	Name          string            `yaml:"name,omitempty"`
	CustomDir     string            `yaml:"custom_dir,omitempty"`
	Language      string            `yaml:"language,omitempty"`
	Palette       map[string]string `yaml:"palette,omitempty"`
	Features      []string          `yaml:"features,omitempty"`
	ShowBuildDate bool              `yaml:"show_build_date,omitempty"`
}

// HasFeature reports whether a theme feature flag is enabled.
func (t ThemeConfig) HasFeature(name string) bool {
	for _, f := range t.Features {
		if f == name {
			return true
		}
	}
	return false
}

// PluginsConfig groups the built-in plugins. There is no external plugin loading.
type PluginsConfig struct {
	Search    SearchPlugin    `yaml:"search,omitempty"`
	Redirects RedirectsPlugin `yaml:"redirects,omitempty"`
	Macros    MacrosPlugin    `yaml:"macros,omitempty"`
}

// SearchPlugin controls search index generation.
type SearchPlugin struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Lang      string `yaml:"lang,omitempty"`
	Separator string `yaml:"separator,omitempty"`
}

// IsEnabled defaults to true when unset.
func (s SearchPlugin) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// RedirectsPlugin holds the old-path to new-path mapping.
type RedirectsPlugin struct {
	RedirectMaps map[string]string `yaml:"redirect_maps,omitempty"`
}

// MacrosPlugin controls template substitution inside page bodies.
type MacrosPlugin struct {
	Enabled     bool        `yaml:"enabled,omitempty"`
	IncludeDir  string      `yaml:"include_dir,omitempty"`
	DataDir     string      `yaml:"data_dir,omitempty"`
	OnUndefined OnUndefined `yaml:"on_undefined,omitempty"`
}

// ValidationConfig sets the reporting level of each class of content problem.
type ValidationConfig struct {
	Nav   NavValidation  `yaml:"nav,omitempty"`
	Links LinkValidation `yaml:"links,omitempty"`
}

// NavValidation levels. Nav entries naming a Markdown page that does not exist are always an error.
type NavValidation struct {
	OmittedFiles Level `yaml:"omitted_files,omitempty"`
	NotFound     Level `yaml:"not_found,omitempty"`
}

// LinkValidation levels for links found in page bodies.
type LinkValidation struct {
	NotFound          Level `yaml:"not_found,omitempty"`
	Anchors           Level `yaml:"anchors,omitempty"`
	AbsoluteLinks     Level `yaml:"absolute_links,omitempty"`
	UnrecognizedLinks Level `yaml:"unrecognized_links,omitempty"`
}

// LinkCheckConfig configures the external link checker.
type LinkCheckConfig struct {
	Enabled     bool         `yaml:"enabled,omitempty"`
	Timeout     Duration     `yaml:"timeout,omitempty"`
	Concurrency int          `yaml:"concurrency,omitempty"`
	Ignore      []string     `yaml:"ignore,omitempty"`
	Cache       CacheBackend `yaml:"cache,omitempty"`
	SQLitePath  string       `yaml:"sqlite_path,omitempty"`
	NATSURL     string       `yaml:"nats_url,omitempty"`
	KVBucket    string       `yaml:"kv_bucket,omitempty"`
	TTL         Duration     `yaml:"ttl,omitempty"`
	FailureTTL  Duration     `yaml:"failure_ttl,omitempty"`
	UserAgent   string       `yaml:"user_agent,omitempty"`
	Retry       RetryConfig  `yaml:"retry,omitempty"`
}

// RetryConfig describes the backoff applied to transient link check failures.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial    Duration         `yaml:"initial,omitempty"`
	Max        Duration         `yaml:"max,omitempty"`
	MaxRetries *int             `yaml:"max_retries,omitempty"`
}

// VersioningConfig configures multi-version publishing.
type VersioningConfig struct {
	PublishDir   string    `yaml:"publish_dir,omitempty"`
	DefaultAlias string    `yaml:"default_alias,omitempty"`
	AliasType    AliasType `yaml:"alias_type,omitempty"`
}

// PublishConfig configures deployment of the built site to a git branch.
type PublishConfig struct {
	RemoteURL   string `yaml:"remote_url,omitempty"`
	RemoteName  string `yaml:"remote_name,omitempty"`
	Branch      string `yaml:"branch,omitempty"`
	Message     string `yaml:"message,omitempty"`
	CNAME       string `yaml:"cname,omitempty"`
	TokenEnv    string `yaml:"token_env,omitempty"`
	Username    string `yaml:"username,omitempty"`
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Addr              string   `yaml:"addr,omitempty"`
	PollInterval      Duration `yaml:"poll_interval,omitempty"`
	LinkCheckInterval Duration `yaml:"link_check_interval,omitempty"`
	Metrics           bool     `yaml:"metrics,omitempty"`
}

// LintConfig points at the lint rule configuration.
type LintConfig struct {
	Config string `yaml:"config,omitempty"`
}

// Load reads, expands, decodes, normalizes, defaults and validates a configuration file.
// Unknown keys and malformed YAML fail immediately with a config error.
func Load(configPath string) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve configuration path").
			WithContext("path", configPath).Build()
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration file").
			WithContext("path", configPath).Build()
	}

	if err := loadEnvFiles(filepath.Dir(abs)); err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse configuration").
			WithContext("path", configPath).Build()
	}
	cfg.path = abs

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML after environment expansion. It performs no defaulting or validation.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the absolute path of the loaded configuration file, empty if not loaded from disk.
func (c *Config) Path() string { return c.path }

// BaseDir is the directory relative paths are resolved against.
func (c *Config) BaseDir() string {
	if c.path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(c.path)
}

// SetBaseDir anchors relative paths for configurations built in code.
func (c *Config) SetBaseDir(dir string) {
	c.path = filepath.Join(dir, DefaultFileName)
}

// Resolve makes p absolute relative to BaseDir. Empty stays empty.
func (c *Config) Resolve(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.BaseDir(), p)
}

// DocsPath is the absolute docs source directory.
func (c *Config) DocsPath() string { return c.Resolve(c.DocsDir) }

// SitePath is the absolute output directory.
func (c *Config) SitePath() string { return c.Resolve(c.SiteDir) }

// ReportPath is the absolute directory for build reports and manifests.
func (c *Config) ReportPath() string { return c.Resolve(c.ReportDir) }

// DirectoryURLs reports whether pages get pretty directory URLs (default true).
func (c *Config) DirectoryURLs() bool {
	return c.UseDirectoryURLs == nil || *c.UseDirectoryURLs
}

// Bool returns a pointer to b, convenient for optional flags.
func Bool(b bool) *bool { return &b }
