package versioning

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/redirects"
)

// Manager edits one publish directory. It is not safe for concurrent use; the CLI runs
// one operation per process.
type Manager struct {
	root         string
	aliasType    config.AliasType
	defaultAlias string
}

// NewManager creates a manager for root, which is created on first write.
func NewManager(cfg config.VersioningConfig, root string) *Manager {
	aliasType := cfg.AliasType
	if aliasType == "" {
		aliasType = config.AliasRedirect
	}
	return &Manager{root: root, aliasType: aliasType, defaultAlias: cfg.DefaultAlias}
}

// Root returns the publish directory.
func (m *Manager) Root() string { return m.root }

// List returns the deployed versions, newest first.
func (m *Manager) List() ([]Version, error) {
	return readList(m.root)
}

// DeployOptions configure Deploy.
type DeployOptions struct {
	Title   string
	Aliases []string
	// UpdateAliases allows moving an alias that currently points at another version.
	UpdateAliases bool
}

// Deploy copies a built site into <root>/<version> and refreshes the version's aliases.
// A new version is listed first; redeploying keeps its position and merges aliases.
// The first deployment also writes the root redirect.
func (m *Manager) Deploy(siteDir, version string, opts DeployOptions) error {
	if err := validateName("version", version); err != nil {
		return err
	}
	for _, a := range opts.Aliases {
		if err := validateName("alias", a); err != nil {
			return err
		}
		if a == version {
			return errors.VersioningError(fmt.Sprintf("alias %q is the version itself", a)).Build()
		}
	}
	if info, err := os.Stat(siteDir); err != nil || !info.IsDir() {
		return errors.VersioningError("site directory does not exist; build the site first").
			WithContext("path", siteDir).Build()
	}

	list, err := readList(m.root)
	if err != nil {
		return err
	}
	if owner := aliasOwner(list, version); owner >= 0 {
		return errors.VersioningError(fmt.Sprintf("%q is already an alias of version %q", version, list[owner].Version)).
			WithContext("version", version).Build()
	}
	list, err = m.claimAliases(list, version, opts.Aliases, opts.UpdateAliases)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.root, dirMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create publish directory").WithContext("path", m.root).Build()
	}
	if err := replaceDir(m.root, m.dir(version), func(dir string) error { return copyTree(siteDir, dir) }); err != nil {
		return err
	}

	idx := indexOf(list, version)
	if idx < 0 {
		title := opts.Title
		if title == "" {
			title = version
		}
		list = append([]Version{{Version: version, Title: title, Aliases: []string{}}}, list...)
		idx = 0
	} else if opts.Title != "" {
		list[idx].Title = opts.Title
	}
	for _, a := range opts.Aliases {
		if !list[idx].HasAlias(a) {
			list[idx].Aliases = append(list[idx].Aliases, a)
		}
	}
	for _, a := range list[idx].Aliases {
		if err := m.writeAlias(version, a); err != nil {
			return err
		}
	}
	if err := writeList(m.root, list); err != nil {
		return err
	}
	slog.Info("Deployed version", logfields.Version(version), slog.Any("aliases", list[idx].Aliases))

	if _, err := os.Stat(filepath.Join(m.root, IndexFile)); os.IsNotExist(err) {
		target := version
		if m.defaultAlias != "" && list[idx].HasAlias(m.defaultAlias) {
			target = m.defaultAlias
		}
		return m.writeIndex(target)
	}
	return nil
}

// Alias points alias at an existing version.
func (m *Manager) Alias(version, alias string, updateAliases bool) error {
	if err := validateName("alias", alias); err != nil {
		return err
	}
	list, err := readList(m.root)
	if err != nil {
		return err
	}
	idx := indexOf(list, version)
	if idx < 0 {
		return unknownVersion(version)
	}
	if alias == version {
		return errors.VersioningError(fmt.Sprintf("alias %q is the version itself", alias)).Build()
	}
	list, err = m.claimAliases(list, version, []string{alias}, updateAliases)
	if err != nil {
		return err
	}
	if !list[idx].HasAlias(alias) {
		list[idx].Aliases = append(list[idx].Aliases, alias)
	}
	if err := m.writeAlias(version, alias); err != nil {
		return err
	}
	if err := writeList(m.root, list); err != nil {
		return err
	}
	slog.Info("Set alias", logfields.Version(version), logfields.Alias(alias))
	return nil
}

// SetDefault makes the root index.html redirect to a version or alias.
func (m *Manager) SetDefault(name string) error {
	list, err := readList(m.root)
	if err != nil {
		return err
	}
	if indexOf(list, name) < 0 && aliasOwner(list, name) < 0 {
		return errors.VersioningError(fmt.Sprintf("no version or alias named %q", name)).
			WithContext("version", name).Build()
	}
	return m.writeIndex(name)
}

// Default returns the version or alias the root index.html redirects to, or "" when
// there is no root redirect or it was not written by SetDefault.
func (m *Manager) Default() (string, error) {
	data, err := os.ReadFile(filepath.Join(m.root, IndexFile)) // #nosec G304 -- inside the publish directory
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.WrapError(err, errors.CategoryFileSystem, "read root redirect").Build()
	}
	list, err := readList(m.root)
	if err != nil {
		return "", err
	}
	for _, v := range list {
		for _, name := range append([]string{v.Version}, v.Aliases...) {
			if bytes.Equal(data, indexHTML(name)) {
				return name, nil
			}
		}
	}
	return "", nil
}

// Delete removes a version together with its alias directories. A root redirect that
// pointed at it is removed as well.
func (m *Manager) Delete(version string) error {
	list, err := readList(m.root)
	if err != nil {
		return err
	}
	idx := indexOf(list, version)
	if idx < 0 {
		return unknownVersion(version)
	}
	def, err := m.Default()
	if err != nil {
		return err
	}
	removed := list[idx]
	for _, name := range append([]string{removed.Version}, removed.Aliases...) {
		if err := os.RemoveAll(m.dir(name)); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "remove version directory").
				WithContext("path", m.dir(name)).Build()
		}
	}
	list = slices.Delete(list, idx, idx+1)
	if err := writeList(m.root, list); err != nil {
		return err
	}
	if def != "" && (def == removed.Version || removed.HasAlias(def)) {
		if err := os.Remove(filepath.Join(m.root, IndexFile)); err != nil && !os.IsNotExist(err) {
			return errors.WrapError(err, errors.CategoryFileSystem, "remove root redirect").Build()
		}
		slog.Warn("Removed root redirect to deleted version; run versions set-default", logfields.Version(version))
	}
	slog.Info("Deleted version", logfields.Version(version))
	return nil
}

// Retitle changes the display title of a version.
func (m *Manager) Retitle(version, title string) error {
	list, err := readList(m.root)
	if err != nil {
		return err
	}
	idx := indexOf(list, version)
	if idx < 0 {
		return unknownVersion(version)
	}
	if title == "" {
		return errors.VersioningError("title must not be empty").WithContext("version", version).Build()
	}
	list[idx].Title = title
	return writeList(m.root, list)
}

// claimAliases checks that each alias is free to point at version and detaches aliases
// from other versions when update is set.
func (m *Manager) claimAliases(list []Version, version string, aliases []string, update bool) ([]Version, error) {
	for _, a := range aliases {
		if indexOf(list, a) >= 0 {
			return nil, errors.VersioningError(fmt.Sprintf("alias %q is already a version", a)).
				WithContext("alias", a).Build()
		}
		owner := aliasOwner(list, a)
		if owner < 0 || list[owner].Version == version {
			continue
		}
		if !update {
			return nil, errors.VersioningError(fmt.Sprintf("alias %q already points at version %q", a, list[owner].Version)).
				WithContext("alias", a).
				WithContext("hint", "pass --update-aliases to move it").Build()
		}
		list[owner].Aliases = slices.DeleteFunc(list[owner].Aliases, func(s string) bool { return s == a })
		slog.Info("Moving alias", logfields.Alias(a), slog.String("from", list[owner].Version), logfields.Version(version))
	}
	return list, nil
}

func (m *Manager) writeAlias(version, alias string) error {
	src := m.dir(version)
	fill := func(dir string) error { return writeRedirectTree(src, dir, version, alias) }
	if m.aliasType == config.AliasCopy {
		fill = func(dir string) error { return copyTree(src, dir) }
	}
	return replaceDir(m.root, m.dir(alias), fill)
}

func (m *Manager) writeIndex(name string) error {
	if err := os.MkdirAll(m.root, dirMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create publish directory").WithContext("path", m.root).Build()
	}
	if err := writeAtomic(filepath.Join(m.root, IndexFile), indexHTML(name)); err != nil {
		return err
	}
	slog.Info("Set default version", logfields.Version(name))
	return nil
}

func (m *Manager) dir(name string) string { return filepath.Join(m.root, name) }

func indexHTML(name string) []byte { return redirects.StubHTML(name+"/", "") }

func indexOf(list []Version, version string) int {
	return slices.IndexFunc(list, func(v Version) bool { return v.Version == version })
}

func aliasOwner(list []Version, alias string) int {
	return slices.IndexFunc(list, func(v Version) bool { return v.HasAlias(alias) })
}

func unknownVersion(version string) error {
	return errors.VersioningError(fmt.Sprintf("version %q is not deployed", version)).
		WithContext("version", version).Build()
}
