package lint

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Options control reporting.
type Options struct {
	// Quiet suppresses warnings and infos, only showing errors.
	Quiet bool
}

// Linter performs linting operations on documentation files.
type Linter struct {
	cfg   *Config
	opts  Options
	rules []Rule
}

// NewLinter creates a linter. A nil cfg uses the defaults.
func NewLinter(cfg *Config, opts Options) *Linter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Linter{cfg: cfg, opts: opts, rules: cfg.rules()}
}

// LintPath lints all documentation files in the given path (file or directory).
// Issue paths are relative to path, or the base name when path is a file.
func (l *Linter) LintPath(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryLint, "lint path does not exist").
			WithContext("path", path).Build()
	}
	result := &Result{Issues: []Issue{}}

	if !info.IsDir() {
		if err := l.lintFile(path, filepath.Base(path), result); err != nil {
			return nil, err
		}
		result.sort()
		return result, nil
	}

	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		return l.lintFile(p, filepath.ToSlash(rel), result)
	})
	if walkErr != nil {
		return nil, errors.WrapError(walkErr, errors.CategoryFileSystem, "walk lint path").
			WithContext("path", path).Build()
	}
	result.sort()
	return result, nil
}

// LintFiles lints a specific list of files (useful for Git hooks). Missing files are skipped.
func (l *Linter) LintFiles(files []string) (*Result, error) {
	result := &Result{Issues: []Issue{}}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := l.lintFile(f, filepath.ToSlash(f), result); err != nil {
			return nil, err
		}
	}
	result.sort()
	return result, nil
}

// lintFile applies all applicable rules to a single file.
func (l *Linter) lintFile(abs, rel string, result *Result) error {
	if !IsDocFile(rel) && !IsAssetFile(rel) {
		return nil
	}
	result.FilesTotal++

	var content []byte
	if IsDocFile(rel) {
		data, err := os.ReadFile(abs) // #nosec G304 -- file comes from the lint walk
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "read file").WithContext("path", abs).Build()
		}
		content = data
	}
	src := NewSource(rel, content)

	for _, rule := range l.rules {
		if !rule.AppliesTo(rel) {
			continue
		}
		for _, issue := range rule.Check(src) {
			if l.opts.Quiet && issue.Severity != SeverityError {
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	slog.Debug("Linted file", logfields.Path(rel))
	return nil
}
