package versioning

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/redirects"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// writeAtomic writes data to a temporary sibling and renames it into place.
func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create temporary file").WithContext("path", dest).Build()
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "write temporary file").WithContext("path", dest).Build()
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "close temporary file").WithContext("path", dest).Build()
	}
	if err := os.Chmod(name, fileMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "set file mode").WithContext("path", dest).Build()
	}
	if err := os.Rename(name, dest); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "replace file").WithContext("path", dest).Build()
	}
	return nil
}

// replaceDir fills a scratch directory next to dest with fill and swaps it into place.
// dest is untouched when fill fails.
func replaceDir(root, dest string, fill func(dir string) error) error {
	ws := workspace.NewManager(root, "docsite-version")
	if err := ws.Create(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create version workspace").WithContext("path", root).Build()
	}
	defer func() { _ = ws.Cleanup() }()

	if err := fill(ws.Path()); err != nil {
		return err
	}
	if err := os.Chmod(ws.Path(), dirMode); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "set directory mode").WithContext("path", dest).Build()
	}
	if err := os.RemoveAll(dest); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "remove previous directory").WithContext("path", dest).Build()
	}
	if err := os.Rename(ws.Path(), dest); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "move directory into place").WithContext("path", dest).Build()
	}
	ws.Release()
	return nil
}

// copyTree copies every regular file below src into dst.
func copyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, dirMode)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(p) // #nosec G304 -- walking a directory we own
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, fileMode)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "copy directory").
			WithContext("from", src).WithContext("to", dst).Build()
	}
	return nil
}

// writeRedirectTree writes one redirect stub into dst for every HTML page below src.
// Stubs link relatively from <alias>/<page> to <version>/<page>; index pages link to
// their directory.
func writeRedirectTree(src, dst, version, alias string) error {
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		to := path.Join(version, rel)
		if path.Base(rel) == "index.html" {
			to = strings.TrimSuffix(to, "index.html")
		}
		href := content.RelativeURL(path.Join(alias, rel), to)
		target := filepath.Join(dst, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
			return err
		}
		return os.WriteFile(target, redirects.StubHTML(href, ""), fileMode)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write alias redirects").
			WithContext("version", version).WithContext("alias", alias).Build()
	}
	return nil
}
