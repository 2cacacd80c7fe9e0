//go:build property

package redirects

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRedirectProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a loaded set ignores later changes to its input and its copies", prop.ForAll(
		func(sources []string, target string) bool {
			raw := map[string]string{}
			for _, s := range sources {
				raw[s+".md"] = target + ".md"
			}
			set, err := Load(raw)
			if err != nil {
				return false
			}
			before := set.Rules()

			for k := range raw {
				raw[k] = "changed.md"
			}
			raw["injected.md"] = "elsewhere.md"
			copied := set.Rules()
			for i := range copied {
				copied[i].To = "mutated.md"
			}

			return reflect.DeepEqual(before, set.Rules()) && set.Len() == len(before)
		},
		gen.SliceOfN(5, gen.RegexMatch(`^[a-z]{1,6}$`)),
		gen.RegexMatch(`^[A-Z]{1,6}$`),
	))

	properties.Property("chains collapse onto their final target", prop.ForAll(
		func(n int) bool {
			raw := map[string]string{}
			for i := 0; i < n; i++ {
				raw[fmt.Sprintf("step%d.md", i)] = fmt.Sprintf("step%d.md", i+1)
			}
			set, err := Load(raw)
			if err != nil {
				return false
			}
			final := fmt.Sprintf("step%d.md", n)
			for from := range raw {
				if to, ok := set.Target(from); !ok || to != final {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
	))

	properties.Property("closing a chain into a loop is rejected", prop.ForAll(
		func(n int) bool {
			raw := map[string]string{}
			for i := 0; i < n; i++ {
				raw[fmt.Sprintf("loop%d.md", i)] = fmt.Sprintf("loop%d.md", (i+1)%n)
			}
			_, err := Load(raw)
			return err != nil
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
