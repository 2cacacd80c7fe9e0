package macros

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// loadDataDir decodes every yml, yaml, json and toml file directly in dir, keyed by base name.
// A missing directory yields no data.
func loadDataDir(dir string) (map[string]any, error) {
	out := map[string]any{}
	if dir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		key := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}

		var v any
		switch ext {
		case ".yml", ".yaml":
			err = yaml.Unmarshal(data, &v)
		case ".json":
			err = json.Unmarshal(data, &v)
		case ".toml":
			var m map[string]any
			err = toml.Unmarshal(data, &m)
			v = m
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("data file %s: %w", e.Name(), err)
		}
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("data file %s: key %q already defined by another data file", e.Name(), key)
		}
		out[key] = v
	}
	return out, nil
}
