package lint

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultConfigFile is looked up next to docsite.yml when lint.config is not set.
const DefaultConfigFile = ".docsite-lint.toml"

// DefaultMaxLineLength applies when [line_length] max is not set.
const DefaultMaxLineLength = 120

// Config is the lint rule configuration.
type Config struct {
	Rules      RulesConfig      `toml:"rules"`
	LineLength LineLengthConfig `toml:"line_length"`
	Spelling   SpellingConfig   `toml:"spelling"`
}

// RulesConfig selects rules.
type RulesConfig struct {
	Disable []string `toml:"disable"`
}

// LineLengthConfig tunes the line-length rule.
type LineLengthConfig struct {
	Max int `toml:"max"`
}

// SpellingConfig extends the spelling rule.
type SpellingConfig struct {
	// Words are never reported.
	Words []string `toml:"words"`
	// Corrections are added to the built-in misspellings.
	Corrections map[string]string `toml:"corrections"`
}

// DefaultConfig enables every rule with default settings.
func DefaultConfig() *Config {
	return &Config{LineLength: LineLengthConfig{Max: DefaultMaxLineLength}}
}

// LoadConfig reads a lint configuration. A missing file yields the defaults.
// Malformed TOML, unknown keys and invalid values are CategoryLint errors.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.WrapError(err, errors.CategoryLint, "read lint config").
			WithContext("path", path).Build()
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes TOML lint configuration. name is used in error context.
func ParseConfig(data []byte, name string) (*Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		msg := "malformed lint config"
		var strict *toml.StrictMissingError
		if stdErrors.As(err, &strict) {
			msg = "unknown key in lint config"
		}
		return nil, errors.WrapError(err, errors.CategoryLint, msg).WithContext("path", name).Build()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks rule names and numeric settings.
func (c *Config) Validate() error {
	for _, r := range c.Rules.Disable {
		if !slices.Contains(AllRules, r) {
			return errors.LintError(fmt.Sprintf("unknown rule %q in [rules] disable", r)).
				WithContext("known", strings.Join(AllRules, ", ")).Build()
		}
	}
	if c.LineLength.Max <= 0 {
		return errors.LintError("[line_length] max must be positive").
			WithContext("max", c.LineLength.Max).Build()
	}
	for from, to := range c.Spelling.Corrections {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return errors.LintError("spelling corrections need a word and a replacement").Build()
		}
	}
	return nil
}

// Enabled reports whether a rule is active.
func (c *Config) Enabled(rule string) bool {
	return !slices.Contains(c.Rules.Disable, rule)
}

// rules builds the active rule set in a fixed order.
func (c *Config) rules() []Rule {
	corrections := make(map[string]string, len(DefaultCorrections)+len(c.Spelling.Corrections))
	for k, v := range DefaultCorrections {
		corrections[k] = v
	}
	for k, v := range c.Spelling.Corrections {
		corrections[strings.ToLower(k)] = v
	}
	allow := make(map[string]bool, len(c.Spelling.Words))
	for _, w := range c.Spelling.Words {
		allow[strings.ToLower(w)] = true
	}

	all := []Rule{
		&FilenameRule{},
		&FrontmatterRule{},
		&HeadingIncrementRule{},
		&TrailingWhitespaceRule{},
		&LineLengthRule{Max: c.LineLength.Max},
		&SpellingRule{Corrections: corrections, Allow: allow},
		&FingerprintRule{},
	}
	out := all[:0]
	for _, r := range all {
		if c.Enabled(r.Name()) {
			out = append(out, r)
		}
	}
	return out
}
