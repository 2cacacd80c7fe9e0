package macros

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func TestRenderPure(t *testing.T) {
	out, err := Render("t", "Hello {{ .name }}", map[string]any{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "Hello World", out)

	_, err = Render("t", "Hello {{ .missing }}", map[string]any{})
	require.Error(t, err)
	assert.True(t, IsUndefined(err))

	_, err = Render("t", "{{ .broken", nil)
	require.Error(t, err)
	assert.False(t, IsUndefined(err))
}

func TestEngineVariablesAndHelpers(t *testing.T) {
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"data/tools.yml":       "- name: ruff\n  purpose: lint\n- name: uv\n  purpose: packaging | envs\n",
		"data/versions.toml":   "python = \"3.12\"\n",
		"data/owners.json":     `{"backend": "platform-team"}`,
		"includes/warning.md":  "> Deprecated\n",
	})

	e, err := New(Options{
		Extra:      map[string]any{"org": "Acme", "langs": []any{"go", "python"}},
		Site:       map[string]any{"site_name": "Standards"},
		DataDir:    filepath.Join(root, "data"),
		IncludeDir: filepath.Join(root, "includes"),
	})
	require.NoError(t, err)

	body := `# {{ .page.title }} at {{ .org | upper }}
Site: {{ .config.site_name }}, Python {{ .versions.python }}, owner {{ .owners.backend }}
Langs: {{ join .langs ", " }} / {{ default "n/a" .page.empty }} / {{ lower "LOUD" }}
{{ table .tools "name" "purpose" }}
{{ include "warning.md" }}`

	out, err := e.RenderPage("backend/python.md", []byte(body), map[string]any{"title": "Python", "empty": ""})
	require.NoError(t, err)
	assert.False(t, out.Kept)

	got := string(out.Body)
	assert.Contains(t, got, "# Python at ACME")
	assert.Contains(t, got, "Site: Standards, Python 3.12, owner platform-team")
	assert.Contains(t, got, "Langs: go, python / n/a / loud")
	assert.Contains(t, got, "| name | purpose |\n| --- | --- |\n| ruff | lint |\n| uv | packaging \\| envs |\n")
	assert.Contains(t, got, "> Deprecated")
}

func TestEngineLeavesCodeUntouched(t *testing.T) {
	e, err := New(Options{Extra: map[string]any{"x": "X"}})
	require.NoError(t, err)

	body := "Value {{ .x }} and `{{ .inline }}`\n\n```yaml\nrun: ${{ secrets.TOKEN }}\n```\n\n~~~~\n{{ .also }}\n~~~~\n"
	out, err := e.RenderPage("ci.md", []byte(body), nil)
	require.NoError(t, err)
	assert.Equal(t, "Value X and `{{ .inline }}`\n\n```yaml\nrun: ${{ secrets.TOKEN }}\n```\n\n~~~~\n{{ .also }}\n~~~~\n", string(out.Body))
}

func TestEngineUndefinedStrictNamesPage(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	_, err = e.RenderPage("guide.md", []byte("{{ .nope }}"), nil)
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryMacros, ce.Category())
	page, _ := ce.Context().GetString("page")
	assert.Equal(t, "guide.md", page)
}

func TestEngineUndefinedKeep(t *testing.T) {
	e, err := New(Options{OnUndefined: config.UndefinedKeep})
	require.NoError(t, err)

	body := []byte("Hello {{ .nope }}")
	out, err := e.RenderPage("guide.md", body, nil)
	require.NoError(t, err)
	assert.True(t, out.Kept)
	assert.NotEmpty(t, out.Warning)
	assert.Equal(t, body, out.Body)
}

func TestNewRejectsShadowingAndReserved(t *testing.T) {
	root := testutil.WriteTree(t, t.TempDir(), map[string]string{"data/org.yml": "a: 1\n"})
	_, err := New(Options{Extra: map[string]any{"org": "x"}, DataDir: filepath.Join(root, "data")})
	require.Error(t, err)

	_, err = New(Options{Extra: map[string]any{"page": "x"}})
	require.Error(t, err)

	_, err = New(Options{DataDir: filepath.Join(root, "missing")})
	require.NoError(t, err)
}

func TestIncludeRejectsEscape(t *testing.T) {
	e, err := New(Options{IncludeDir: t.TempDir()})
	require.NoError(t, err)
	_, err = e.RenderPage("a.md", []byte(`{{ include "../secret" }}`), nil)
	require.Error(t, err)
}

func TestEngineFromConfig(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default("Standards", root)
	cfg.Extra = map[string]any{"team": "platform"}

	e, err := NewFromConfig(cfg)
	require.NoError(t, err)
	out, err := e.RenderPage("a.md", []byte("{{ .config.site_name }} by {{ .team }}"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Standards by platform", string(out.Body))
}
