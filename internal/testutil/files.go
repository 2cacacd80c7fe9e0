// Package testutil holds helpers for tests that build docs trees on disk.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// WriteFile writes content to the slash separated path rel below dir, creating
// parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// WriteTree writes every path -> content pair of files below dir and returns dir.
func WriteTree(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for rel, content := range files {
		WriteFile(t, dir, rel, content)
	}
	return dir
}

// ListFiles returns the regular files below dir as sorted slash paths.
func ListFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		out = append(out, filepath.ToSlash(rel))
		return err
	})
	require.NoError(t, err)
	slices.Sort(out)
	return out
}

// FileAssertions checks files below one root. Methods chain.
type FileAssertions struct {
	t    *testing.T
	root string
}

func NewFileAssertions(t *testing.T, root string) *FileAssertions {
	return &FileAssertions{t: t, root: root}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.root, filepath.FromSlash(rel))
}

// Read fails the test when rel cannot be read.
func (fa *FileAssertions) Read(rel string) string {
	fa.t.Helper()
	b, err := os.ReadFile(fa.path(rel)) // #nosec G304 -- test paths
	require.NoError(fa.t, err)
	return string(b)
}

func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.FileExists(fa.t, fa.path(rel))
	return fa
}

func (fa *FileAssertions) AssertFileContains(rel, want string) *FileAssertions {
	fa.t.Helper()
	assert.Contains(fa.t, fa.Read(rel), want, rel)
	return fa
}

// AssertNotExists passes when nothing, file or directory, exists at rel.
func (fa *FileAssertions) AssertNotExists(rel string) *FileAssertions {
	fa.t.Helper()
	_, err := os.Lstat(fa.path(rel))
	assert.ErrorIs(fa.t, err, fs.ErrNotExist, rel)
	return fa
}
