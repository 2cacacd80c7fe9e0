//go:build property

package build

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

// TestBuildProperties checks that rebuilding the same sources gives the same bytes.
func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("rebuild is byte-identical", prop.ForAll(
		func(names []string, words []string, dirURLs bool) bool {
			docs := map[string]string{"index.md": "# Home\n"}
			seen := map[string]bool{}
			for i, n := range names {
				if seen[n] || n == "index" {
					continue
				}
				seen[n] = true
				body := strings.Join(words, " ")
				docs[n+".md"] = fmt.Sprintf("# Page %d\n\n%s\n\nBack [home](index.md).\n", i, body)
			}

			dir := t.TempDir()
			testutil.WriteTree(t, filepath.Join(dir, "docs"), docs)
			cfg := config.Default("Standards", dir)
			cfg.UseDirectoryURLs = config.Bool(dirURLs)
			if err := cfg.Validate(); err != nil {
				return false
			}

			first, err := New(cfg).Build(context.Background())
			if err != nil {
				return false
			}
			second, err := New(cfg).Build(context.Background())
			if err != nil {
				return false
			}
			return first.Manifest.Hash == second.Manifest.Hash &&
				len(first.Manifest.Files) == len(second.Manifest.Files)
		},
		gen.SliceOfN(4, gen.RegexMatch(`^[a-z]{1,8}$`)),
		gen.SliceOfN(6, gen.RegexMatch(`^[A-Za-z]{1,10}$`)),
		gen.Bool(),
	))

	properties.Property("page order in the manifest is sorted", prop.ForAll(
		func(names []string) bool {
			docs := map[string]string{"index.md": "# Home\n"}
			for _, n := range names {
				docs[n+".md"] = "# " + n + "\n"
			}
			dir := t.TempDir()
			testutil.WriteTree(t, filepath.Join(dir, "docs"), docs)
			cfg := config.Default("Standards", dir)
			if err := cfg.Validate(); err != nil {
				return false
			}
			res, err := New(cfg).Build(context.Background())
			if err != nil {
				return false
			}
			return sort.SliceIsSorted(res.Manifest.Files, func(i, j int) bool {
				return res.Manifest.Files[i].Path < res.Manifest.Files[j].Path
			})
		},
		gen.SliceOfN(3, gen.RegexMatch(`^[a-z]{2,6}$`)),
	))

	properties.TestingRun(t)
}
