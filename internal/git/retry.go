package git

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// defaultPolicy retries network hiccups during clone and push. A publish usually
// runs in CI, so it gives up after a few seconds instead of hanging a job.
func defaultPolicy() retry.Policy {
	return retry.NewPolicy(config.RetryBackoffExponential, 500*time.Millisecond, 4*time.Second, 3)
}

// withRetry runs fn under the client's policy. Errors that another attempt cannot
// fix end the loop at once.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	return c.policy.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			slog.Warn("Retrying git operation",
				slog.String("operation", op),
				slog.Int("attempt", attempt),
				slog.String("branch", c.opts.Branch))
		}
		return fn()
	}, isPermanentGitError)
}

// typedRemoteError returns the typed remote failure wrapped in err, if any.
func typedRemoteError(err error) (error, bool) {
	var (
		auth        *AuthError
		notFound    *NotFoundError
		unsupported *UnsupportedProtocolError
		diverged    *RemoteDivergedError
	)
	switch {
	case stdErrors.As(err, &auth):
		return auth, true
	case stdErrors.As(err, &notFound):
		return notFound, true
	case stdErrors.As(err, &unsupported):
		return unsupported, true
	case stdErrors.As(err, &diverged):
		return diverged, true
	}
	return nil, false
}

func isPermanentGitError(err error) bool {
	if err == nil {
		return false
	}
	if _, typed := typedRemoteError(err); typed || missingBranch(err) {
		return true
	}
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		return true
	}
	// Refused connections and DNS failures will not heal between attempts; timeouts might.
	var nerr net.Error
	return stdErrors.As(err, &nerr) && !nerr.Timeout()
}
