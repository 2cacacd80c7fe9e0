package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested")
	m := NewManager(base, "stage")
	assert.Empty(t, m.Path())

	require.NoError(t, m.Create())
	dir := m.Path()
	assert.Equal(t, base, filepath.Dir(dir))
	assert.True(t, strings.HasPrefix(filepath.Base(dir), ".stage-"))
	assert.DirExists(t, dir)

	sub, err := m.CreateSubdir("assets")
	require.NoError(t, err)
	assert.DirExists(t, sub)

	require.NoError(t, m.Cleanup())
	assert.NoDirExists(t, dir)
	require.NoError(t, m.Cleanup())
}

func TestCreateReplacesPreviousDirectory(t *testing.T) {
	m := NewManager(t.TempDir(), "")
	require.NoError(t, m.Create())
	first := m.Path()
	require.NoError(t, m.Create())
	assert.NotEqual(t, first, m.Path())
	assert.NoDirExists(t, first)
	require.NoError(t, m.Cleanup())
}

func TestRelease(t *testing.T) {
	m := NewManager(t.TempDir(), "x")
	require.NoError(t, m.Create())
	dir := m.Path()
	m.Release()
	require.NoError(t, m.Cleanup())
	_, err := os.Stat(dir)
	require.NoError(t, err)
}

func TestCreateSubdirBeforeCreate(t *testing.T) {
	_, err := NewManager(t.TempDir(), "x").CreateSubdir("a")
	require.Error(t, err)
}
