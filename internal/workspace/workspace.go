package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Manager handles one scratch directory.
type Manager struct {
	baseDir string
	prefix  string
	dir     string
}

// NewManager returns a manager creating directories named prefix-* inside baseDir
// (the system temp dir when empty).
func NewManager(baseDir, prefix string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if prefix == "" {
		prefix = "docsite"
	}
	return &Manager{baseDir: baseDir, prefix: prefix}
}

// Create makes the directory. Calling it again replaces the previous one.
func (m *Manager) Create() error {
	if m.dir != "" {
		if err := m.Cleanup(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace base directory: %w", err)
	}
	dir, err := os.MkdirTemp(m.baseDir, "."+m.prefix+"-")
	if err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the directory, "" before Create.
func (m *Manager) Path() string {
	return m.dir
}

// Release forgets the directory without removing it, after it was moved elsewhere.
func (m *Manager) Release() {
	m.dir = ""
}

// Cleanup removes the directory. It is safe to call more than once.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// CreateSubdir creates a subdirectory within the workspace.
func (m *Manager) CreateSubdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	sub := filepath.Join(m.dir, name)
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}
	return sub, nil
}
