package lint

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Fixer applies the mechanical fixes: trailing whitespace, spelling corrections and
// fingerprint refresh. Other issues are left for a human.
type Fixer struct {
	cfg    *Config
	dryRun bool
}

// NewFixer creates a fixer. With dryRun no file is written.
func NewFixer(cfg *Config, dryRun bool) *Fixer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Fixer{cfg: cfg, dryRun: dryRun}
}

// FileFix describes the changes made to one file.
type FileFix struct {
	Path        string
	Whitespace  int
	Spelling    int
	Fingerprint bool
}

// FixResult summarizes a fix run.
type FixResult struct {
	Files  []FileFix
	DryRun bool
}

// Summary returns a human-readable summary of the fixes.
func (fr *FixResult) Summary() string {
	ws, sp, fp := 0, 0, 0
	for _, f := range fr.Files {
		ws += f.Whitespace
		sp += f.Spelling
		if f.Fingerprint {
			fp++
		}
	}
	verb := "Fixed"
	if fr.DryRun {
		verb = "Would fix"
	}
	return fmt.Sprintf("%s %d file%s: %d trailing whitespace, %d spelling, %d fingerprint%s",
		verb, len(fr.Files), pluralize(len(fr.Files)), ws, sp, fp, pluralize(fp))
}

// Fix processes a file or every documentation file below a directory.
func (f *Fixer) Fix(path string) (*FixResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryLint, "fix path does not exist").
			WithContext("path", path).Build()
	}
	result := &FixResult{DryRun: f.dryRun}
	if !info.IsDir() {
		if err := f.fixFile(path, filepath.Base(path), result); err != nil {
			return nil, err
		}
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
		if d.IsDir() || !IsDocFile(p) {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		return f.fixFile(p, filepath.ToSlash(rel), result)
	})
	if walkErr != nil {
		return nil, errors.WrapError(walkErr, errors.CategoryFileSystem, "walk fix path").
			WithContext("path", path).Build()
	}
	return result, nil
}

func (f *Fixer) fixFile(abs, rel string, result *FixResult) error {
	if !IsDocFile(rel) {
		return nil
	}
	info, err := os.Stat(abs)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "stat file").WithContext("path", abs).Build()
	}
	original, err := os.ReadFile(abs) // #nosec G304 -- file comes from the fix walk
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "read file").WithContext("path", abs).Build()
	}

	fixed, fix, err := f.apply(rel, original)
	if err != nil {
		return err
	}
	if bytes.Equal(fixed, original) {
		return nil
	}
	result.Files = append(result.Files, fix)
	if f.dryRun {
		return nil
	}
	if err := os.WriteFile(abs, fixed, info.Mode().Perm()); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write fixed file").WithContext("path", abs).Build()
	}
	slog.Info("Fixed file", logfields.Path(rel), slog.Int("whitespace", fix.Whitespace),
		slog.Int("spelling", fix.Spelling), slog.Bool("fingerprint", fix.Fingerprint))
	return nil
}

// apply computes the fixed content of one file without touching the disk.
func (f *Fixer) apply(rel string, content []byte) ([]byte, FileFix, error) {
	fix := FileFix{Path: rel}
	src := NewSource(rel, content)

	var edits []markdown.Edit
	if f.cfg.Enabled(RuleTrailingWhitespace) {
		for _, l := range src.Lines {
			if n := trailingWhitespace(l.Text); n > 0 {
				end := l.Start + len(l.Text)
				edits = append(edits, markdown.Edit{Start: end - n, End: end})
				fix.Whitespace++
			}
		}
	}
	if f.cfg.Enabled(RuleSpelling) {
		for _, r := range f.cfg.rules() {
			sp, ok := r.(*SpellingRule)
			if !ok {
				continue
			}
			for _, m := range sp.matches(src) {
				edits = append(edits, markdown.Edit{Start: m.start, End: m.end, Replacement: []byte(m.correction)})
				fix.Spelling++
			}
		}
	}
	out, err := markdown.ApplyEdits(content, edits)
	if err != nil {
		return nil, fix, errors.WrapError(err, errors.CategoryInternal, "apply lint fixes").
			WithContext("path", rel).Build()
	}

	if f.cfg.Enabled(RuleFingerprint) {
		refreshed, changed, err := refreshFingerprint(out)
		if err != nil {
			return nil, fix, errors.WrapError(err, errors.CategoryLint, "refresh fingerprint").
				WithContext("path", rel).Build()
		}
		if changed {
			out = refreshed
			fix.Fingerprint = true
		}
	}
	return out, fix, nil
}

// refreshFingerprint rewrites a stored fingerprint that no longer matches. Pages without
// a fingerprint, or whose front-matter does not parse, are returned unchanged.
func refreshFingerprint(content []byte) ([]byte, bool, error) {
	doc, err := frontmatter.Parse(content)
	if err != nil {
		return content, false, nil //nolint:nilerr // reported by the frontmatter rule
	}
	if _, ok := doc.Fields[frontmatter.FingerprintField]; !ok {
		return content, false, nil
	}
	_, changed, err := frontmatter.UpsertFingerprint(doc.Fields, doc.Body)
	if err != nil || !changed {
		return content, false, err
	}
	out, err := doc.Bytes()
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
