package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryDefaults(t *testing.T) {
	tests := []struct {
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{ConfigError("x"), CategoryConfig, SeverityFatal, RetryNever},
		{ValidationError("x"), CategoryValidation, SeverityFatal, RetryNever},
		{NavError("x"), CategoryNav, SeverityFatal, RetryUserAction},
		{LinksError("x"), CategoryLinks, SeverityError, RetryUserAction},
		{MacrosError("x"), CategoryMacros, SeverityFatal, RetryUserAction},
		{LintError("x"), CategoryLint, SeverityError, RetryUserAction},
		{BuildError("x"), CategoryBuild, SeverityFatal, RetryNever},
		{RenderError("x"), CategoryRender, SeverityFatal, RetryNever},
		{FileSystemError("x"), CategoryFileSystem, SeverityError, RetryBackoff},
		{VersioningError("x"), CategoryVersioning, SeverityError, RetryUserAction},
		{PublishError("x"), CategoryPublish, SeverityError, RetryBackoff},
		{NetworkError("x"), CategoryNetwork, SeverityError, RetryBackoff},
		{InternalError("x"), CategoryInternal, SeverityFatal, RetryNever},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
			assert.Equal(t, tt.retry, err.RetryStrategy())
			assert.Equal(t, tt.retry == RetryBackoff, err.CanRetry())
		})
	}
}

func TestBuilderOverrides(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(cause, CategoryNetwork, "link check failed").
		Warning().
		RateLimit().
		WithContext("host", "example.com").
		WithContextMap(ErrorContext{"status": 429}).
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryRateLimit, err.RetryStrategy())
	assert.True(t, err.CanRetry())
	assert.False(t, err.IsFatal())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[network:warning] link check failed: connection reset", err.Error())

	host, ok := err.Context().GetString("host")
	assert.True(t, ok)
	assert.Equal(t, "example.com", host)
	status, _ := err.Context().Get("status")
	assert.Equal(t, 429, status)
}

func TestBuiltErrorsAreIndependent(t *testing.T) {
	b := NavError("missing pages").WithContext("missing", "a.md")
	first := b.Build()
	b.WithContext("missing", "b.md")
	second := b.Build()

	v, _ := first.Context().GetString("missing")
	assert.Equal(t, "a.md", v)
	v, _ = second.Context().GetString("missing")
	assert.Equal(t, "b.md", v)

	third := first.WithContext("page", "index.md")
	_, ok := first.Context().Get("page")
	assert.False(t, ok, "WithContext copies")
	_, ok = third.Context().Get("missing")
	assert.True(t, ok)
}

func TestChainHelpers(t *testing.T) {
	inner := NavError("missing page").Build()
	wrapped := fmt.Errorf("stage nav: %w", inner)

	ce, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, ce)
	assert.True(t, IsClassified(wrapped))
	assert.True(t, HasCategory(wrapped, CategoryNav))
	assert.True(t, HasSeverity(wrapped, SeverityFatal))
	assert.Equal(t, CategoryNav, GetCategory(wrapped))
	assert.Equal(t, RetryUserAction, GetRetryStrategy(wrapped))
	assert.ErrorIs(t, wrapped, NavError("missing page").Build())
	assert.NotErrorIs(t, wrapped, NavError("other").Build())

	plain := errors.New("boom")
	assert.False(t, IsClassified(plain))
	assert.False(t, HasCategory(plain, CategoryInternal))
	assert.Equal(t, CategoryInternal, GetCategory(plain))
	assert.Equal(t, SeverityError, GetSeverity(plain))
	assert.Equal(t, RetryNever, GetRetryStrategy(plain))
}

func TestErrorContext(t *testing.T) {
	var ctx ErrorContext
	ctx = ctx.Set("page", "guide.md").Set("line", 12)

	v, ok := ctx.GetString("page")
	assert.True(t, ok)
	assert.Equal(t, "guide.md", v)
	_, ok = ctx.GetString("line")
	assert.False(t, ok, "not a string")
	_, ok = ctx.Get("absent")
	assert.False(t, ok)

	merged := ctx.Merge(ErrorContext{"page": "index.md"})
	v, _ = merged.GetString("page")
	assert.Equal(t, "index.md", v)
	v, _ = ctx.GetString("page")
	assert.Equal(t, "guide.md", v, "merge leaves the receiver alone")
}
