package git

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func TestTokenAuth(t *testing.T) {
	t.Setenv("DOCSITE_TEST_TOKEN", "s3cret")

	auth, err := TokenAuth("https://example.com/org/repo.git", "x-access-token", "DOCSITE_TEST_TOKEN")
	require.NoError(t, err)
	basic, ok := auth.(*http.BasicAuth)
	require.True(t, ok)
	assert.Equal(t, "x-access-token", basic.Username)
	assert.Equal(t, "s3cret", basic.Password)

	auth, err = TokenAuth("/srv/git/site.git", "x-access-token", "DOCSITE_TEST_TOKEN")
	require.NoError(t, err)
	assert.Nil(t, auth, "local remotes need no auth")

	auth, err = TokenAuth("https://example.com/org/repo.git", "x-access-token", "DOCSITE_UNSET_TOKEN")
	require.NoError(t, err)
	assert.Nil(t, auth)

	_, err = TokenAuth("https://example.com/org/repo.git", "x-access-token", "")
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestClassifyRemoteError(t *testing.T) {
	tests := []struct {
		msg       string
		permanent bool
		category  errors.ErrorCategory
	}{
		{"authentication required", true, errors.CategoryPublish},
		{"repository not found", true, errors.CategoryPublish},
		{"unsupported protocol scheme", true, errors.CategoryConfig},
		{"non-fast-forward update: refs/heads/gh-pages", true, errors.CategoryPublish},
		{"connection reset by peer", false, errors.CategoryPublish},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classifyRemoteError("push", "https://example.com/r.git", "gh-pages", stdErrors.New(tt.msg))
			assert.Equal(t, tt.permanent, isPermanentGitError(err))
			classified := ClassifyGitError(err, "push", "https://example.com/r.git")
			assert.True(t, errors.HasCategory(classified, tt.category), "got %v", classified)
		})
	}
}

func TestWithRetryStopsOnPermanentErrors(t *testing.T) {
	c := NewClient(t.TempDir(), Options{Branch: "gh-pages"}).
		WithPolicy(retry.NewPolicy("fixed", time.Millisecond, time.Millisecond, 3))

	attempts := 0
	err := c.withRetry(context.Background(), "push", func() error {
		attempts++
		if attempts < 3 {
			return stdErrors.New("connection reset by peer")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = c.withRetry(context.Background(), "push", func() error {
		attempts++
		return &AuthError{Op: "push", Err: stdErrors.New("denied")}
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestHeadRevision(t *testing.T) {
	assert.Empty(t, HeadRevision(t.TempDir()))

	_, w, dir := testutil.SetupTestGitRepo(t)
	testutil.CommitFile(t, w, dir, "docs/index.md", "# Home", "init")
	rev := HeadRevision(dir + "/docs")
	assert.Len(t, rev, 8)
}
