// Package macros substitutes template variables into page bodies before Markdown rendering.
package macros

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Render is the pure substitution function: it executes text as a template over vars.
// Referencing an undefined variable is an error.
func Render(name, text string, vars map[string]any) (string, error) {
	return render(name, text, vars, nil)
}

func render(name, text string, vars map[string]any, funcs template.FuncMap) (string, error) {
	tpl := template.New(name).Option("missingkey=error")
	if funcs != nil {
		tpl = tpl.Funcs(funcs)
	}
	tpl, err := tpl.Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// IsUndefined reports whether a render error comes from a missing variable.
func IsUndefined(err error) bool {
	return err != nil && strings.Contains(err.Error(), "map has no entry for key")
}
