// Package retry holds the backoff policy shared by the external link checker and
// git pushes.
package retry

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Policy is a value type; copies are independent.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration // first delay, and the step for linear growth
	Max        time.Duration // no delay exceeds this
	MaxRetries int           // attempts after the first one
}

// DefaultPolicy is linear backoff from 1s, capped at 30s, with two retries.
func DefaultPolicy() Policy {
	return Policy{
		Mode:       config.RetryBackoffLinear,
		Initial:    time.Second,
		Max:        30 * time.Second,
		MaxRetries: 2,
	}
}

// NewPolicy overlays the given settings on DefaultPolicy. Non-positive durations,
// negative retry counts and unknown modes keep the default, and Initial is
// clamped to Max.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// FromConfig reads a link_check.retry block. An absent max_retries keeps the default.
func FromConfig(rc config.RetryConfig) Policy {
	retries := -1
	if rc.MaxRetries != nil {
		retries = *rc.MaxRetries
	}
	return NewPolicy(rc.Backoff, rc.Initial.D(), rc.Max.D(), retries)
}

// Delay is the wait before retry n, counting from 1. Zero for n < 1.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffExponential:
		if n > 30 {
			return p.Max
		}
		d = p.Initial << (n - 1)
	default:
		d = p.Initial * time.Duration(n)
	}
	if d <= 0 || d > p.Max {
		return p.Max
	}
	return d
}

func (p Policy) Validate() error {
	switch {
	case p.Initial <= 0:
		return fmt.Errorf("retry: initial delay must be positive, got %s", p.Initial)
	case p.Max <= 0:
		return fmt.Errorf("retry: max delay must be positive, got %s", p.Max)
	case p.MaxRetries < 0:
		return fmt.Errorf("retry: max retries cannot be negative, got %d", p.MaxRetries)
	}
	return nil
}

// Do calls fn until it returns nil, ctx ends or the retries run out. fn receives the
// attempt number, 0 for the first call. An error stops the loop early when
// permanent reports true for it, or when it is classified with a retry strategy
// that rules out retrying. permanent may be nil.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error, permanent func(error) bool) error {
	var last error
	for attempt := range p.MaxRetries + 1 {
		if attempt > 0 {
			if err := sleep(ctx, p.Delay(attempt)); err != nil {
				return err
			}
		}
		last = fn(attempt)
		switch {
		case last == nil:
			return nil
		case stopsRetry(last, permanent):
			return last
		case ctx.Err() != nil:
			return ctx.Err()
		}
	}
	return fmt.Errorf("failed after %d retries: %w", p.MaxRetries, last)
}

func stopsRetry(err error, permanent func(error) bool) bool {
	if permanent != nil && permanent(err) {
		return true
	}
	ce, ok := errors.AsClassified(err)
	return ok && !ce.CanRetry()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

