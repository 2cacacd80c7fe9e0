package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

const starterConfig = `# docsite configuration
site_name: Engineering Standards
# site_url: https://standards.example.com/
site_description: Golden Path choices and engineering conventions
# repo_url: https://github.com/example/standards
# edit_uri: edit/main/docs/

docs_dir: docs
site_dir: site
use_directory_urls: true
strict: false

theme:
  name: default
  language: en
  show_build_date: false

nav:
  - Home: index.md

plugins:
  search: {}
  macros:
    enabled: true
    on_undefined: strict
  redirects:
    redirect_maps: {}

extra:
  org: Example Org

validation:
  nav:
    omitted_files: info
  links:
    not_found: warn
    anchors: info

link_check:
  enabled: false
  cache: memory

versioning:
  publish_dir: public
  default_alias: latest

publish:
  branch: gh-pages
  token_env: GITHUB_TOKEN
`

// Init writes a commented starter configuration.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}
	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create configuration directory").Build()
		}
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}
