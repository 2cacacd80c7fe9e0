package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitOK},
		{"validation error", ValidationError("bad value").Build(), ExitValidation},
		{"config error", ConfigError("bad yaml").Build(), ExitConfig},
		{"nav error", NavError("dangling").Build(), ExitNav},
		{"links error", LinksError("broken").Build(), ExitLinks},
		{"lint error", LintError("invalid toml").Build(), ExitLint},
		{"build error", BuildError("failed").Build(), ExitBuild},
		{"macros error", MacrosError("undefined variable").Build(), ExitBuild},
		{"publish error", PublishError("push rejected").Build(), ExitPublish},
		{"network error", NetworkError("timeout").Build(), ExitNetwork},
		{"internal error", InternalError("bug").Build(), ExitInternal},
		{"unclassified error", errors.New("unknown error"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	t.Run("non-verbose shows message and cause", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, slog.Default())
		err := WrapError(errors.New("yaml: line 3"), CategoryConfig, "failed to parse config").Build()
		got := adapter.FormatError(err)
		if got != "Error: failed to parse config: yaml: line 3" {
			t.Errorf("unexpected format: %q", got)
		}
	})

	t.Run("non-verbose hides internal details", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(false, slog.Default())
		got := adapter.FormatError(InternalError("nil pointer").Build())
		if !strings.Contains(got, "use -v for details") {
			t.Errorf("expected hint, got %q", got)
		}
	})

	t.Run("verbose includes sorted context", func(t *testing.T) {
		adapter := NewCLIErrorAdapter(true, slog.Default())
		err := NavError("missing pages").WithContext("z", 1).WithContext("a", 2).Build()
		got := adapter.FormatError(err)
		if strings.Index(got, "a: 2") > strings.Index(got, "z: 1") {
			t.Errorf("expected sorted context, got %q", got)
		}
	})
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	code := -1
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(NavError("navigation references missing pages").Build())

	if code != ExitNav {
		t.Errorf("expected exit %d, got %d", ExitNav, code)
	}
	if !strings.Contains(out.String(), "navigation references missing pages") {
		t.Errorf("expected message on stderr, got %q", out.String())
	}
}
