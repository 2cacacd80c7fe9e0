package build

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// output collects files in the staging directory. Paths are slash separated and
// relative to the site root; a path can only be written once.
type output struct {
	root    string
	written map[string]string
}

func newOutput(root string) *output {
	return &output{root: root, written: map[string]string{}}
}

// has reports whether rel was already written and by which producer.
func (o *output) has(rel string) (string, bool) {
	by, ok := o.written[path.Clean(rel)]
	return by, ok
}

func (o *output) write(rel string, data []byte, producer string) error {
	rel = path.Clean(rel)
	p := filepath.Join(o.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), dirMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", rel).Build()
	}
	if err := os.WriteFile(p, data, fileMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write output file").
			WithContext("path", rel).Build()
	}
	// WriteFile keeps the mode of an existing file; force it.
	if err := os.Chmod(p, fileMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "set output file mode").
			WithContext("path", rel).Build()
	}
	o.written[rel] = producer
	return nil
}

func (o *output) copyFile(rel, src, producer string) error {
	in, err := os.Open(src) // #nosec G304 -- source comes from walking the docs directory
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "open asset").WithContext("path", src).Build()
	}
	defer func() { _ = in.Close() }()
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "read asset").WithContext("path", src).Build()
	}
	return o.write(rel, data, producer)
}

// OutputFile is one generated file.
type OutputFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// OutputManifest lists every generated file. Identical inputs give identical manifests.
type OutputManifest struct {
	Files []OutputFile `json:"files"`
	Hash  string       `json:"hash"`
}

// ManifestFile is the name of the manifest in the report directory.
const ManifestFile = "manifest.json"

// ScanOutput hashes every file below root.
func ScanOutput(root string) (*OutputManifest, error) {
	var files []OutputFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p) // #nosec G304 -- walking the staging tree
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		files = append(files, OutputFile{Path: filepath.ToSlash(rel), SHA256: hex.EncodeToString(sum[:]), Size: int64(len(data))})
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "scan output").WithContext("path", root).Build()
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	h := sha256.New()
	for _, f := range files {
		_, _ = fmt.Fprintf(h, "%s %s\n", f.Path, f.SHA256)
	}
	if files == nil {
		files = []OutputFile{}
	}
	return &OutputManifest{Files: files, Hash: hex.EncodeToString(h.Sum(nil))}, nil
}

func (m *OutputManifest) persist(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return writeAtomic(filepath.Join(dir, ManifestFile), append(data, '\n'))
}

// swap replaces siteDir with the staging directory. The previous site is moved aside
// first and removed only after the new one is in place.
func swap(ws *workspace.Manager, siteDir string) error {
	staging := ws.Path()
	old := ""
	if _, err := os.Stat(siteDir); err == nil {
		old = siteDir + ".old"
		if err := os.RemoveAll(old); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "remove previous backup").WithContext("path", old).Build()
		}
		if err := os.Rename(siteDir, old); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "move previous site aside").WithContext("path", siteDir).Build()
		}
	}
	if err := os.Chmod(staging, dirMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "set site directory mode").WithContext("path", staging).Build()
	}
	if err := os.Rename(staging, siteDir); err != nil {
		if old != "" {
			_ = os.Rename(old, siteDir)
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "move staged site into place").WithContext("path", siteDir).Build()
	}
	ws.Release()
	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "remove previous site").WithContext("path", old).Build()
		}
	}
	return nil
}
