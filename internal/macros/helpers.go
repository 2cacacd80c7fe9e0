package macros

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"text/template"
)

func (e *Engine) funcMap() template.FuncMap {
	return template.FuncMap{
		"table":   table,
		"include": e.include,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"join":    join,
		"default": defaultValue,
	}
}

// table renders rows (a list of mappings) as a Markdown table. Without columns the
// sorted keys of the first row are used.
func table(rows any, columns ...string) (string, error) {
	list, ok := rows.([]any)
	if !ok {
		if m, isMaps := rows.([]map[string]any); isMaps {
			for _, r := range m {
				list = append(list, r)
			}
		} else {
			return "", fmt.Errorf("table: rows must be a list, got %T", rows)
		}
	}
	if len(columns) == 0 && len(list) > 0 {
		first, ok := list[0].(map[string]any)
		if !ok {
			return "", fmt.Errorf("table: rows must be mappings, got %T", list[0])
		}
		for k := range first {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	if len(columns) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(escapeCells(columns), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")
	for i, r := range list {
		row, ok := r.(map[string]any)
		if !ok {
			return "", fmt.Errorf("table: row %d must be a mapping, got %T", i, r)
		}
		cells := make([]string, len(columns))
		for j, c := range columns {
			if v, ok := row[c]; ok && v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		b.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
	}
	return b.String(), nil
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// include inserts a snippet from the include directory verbatim.
func (e *Engine) include(name string) (string, error) {
	if e.includeDir == "" {
		return "", fmt.Errorf("include %q: no include_dir configured", name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("include %q: path escapes include_dir", name)
	}
	data, err := os.ReadFile(filepath.Join(e.includeDir, clean))
	if err != nil {
		return "", fmt.Errorf("include %q: %w", name, err)
	}
	return string(data), nil
}

func join(list any, sep string) (string, error) {
	switch l := list.(type) {
	case []string:
		return strings.Join(l, sep), nil
	case []any:
		parts := make([]string, len(l))
		for i, v := range l {
			parts[i] = fmt.Sprint(v)
		}
		return strings.Join(parts, sep), nil
	default:
		return "", fmt.Errorf("join: expected a list, got %T", list)
	}
}

// defaultValue returns def when value is empty: nil, zero, or an empty string, list or map.
func defaultValue(def, value any) any {
	if value == nil {
		return def
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		if v.Len() == 0 {
			return def
		}
	case reflect.Bool:
		if !v.Bool() {
			return def
		}
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Float64, reflect.Float32:
		if v.IsZero() {
			return def
		}
	}
	return value
}
