// Package versioning maintains a multi-version publish directory: one subdirectory per
// deployed version, alias directories pointing at versions, a versions.json listing and a
// root index.html that redirects to the default version.
package versioning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// ListFile is the machine-readable listing at the top of the publish directory.
const ListFile = "versions.json"

// IndexFile is the root redirect to the default version.
const IndexFile = "index.html"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Version is one entry of versions.json.
type Version struct {
	Version string   `json:"version"`
	Title   string   `json:"title"`
	Aliases []string `json:"aliases"`
}

// HasAlias reports whether alias points at this version.
func (v Version) HasAlias(alias string) bool {
	return slices.Contains(v.Aliases, alias)
}

// validateName rejects names that cannot be used as a directory of the publish tree.
func validateName(kind, name string) error {
	if !namePattern.MatchString(name) || name == ListFile || name == IndexFile {
		return errors.VersioningError(fmt.Sprintf("invalid %s name %q", kind, name)).
			WithContext("pattern", namePattern.String()).Build()
	}
	return nil
}

// readList loads versions.json. A missing file is an empty listing.
func readList(root string) ([]Version, error) {
	path := filepath.Join(root, ListFile)
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside the publish directory
	if err != nil {
		if os.IsNotExist(err) {
			return []Version{}, nil
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read versions list").
			WithContext("path", path).Build()
	}
	var list []Version
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.WrapError(err, errors.CategoryVersioning, "malformed versions list").
			WithContext("path", path).Build()
	}
	for i := range list {
		if list[i].Aliases == nil {
			list[i].Aliases = []string{}
		}
	}
	return list, nil
}

func writeList(root string, list []Version) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode versions list").Build()
	}
	return writeAtomic(filepath.Join(root, ListFile), append(data, '\n'))
}
