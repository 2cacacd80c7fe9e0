package links

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Result is the outcome of checking one external URL.
type Result struct {
	URL    string
	Status int
	OK     bool
	Err    string
	Cached bool
}

// Checker verifies external URLs with bounded concurrency.
type Checker struct {
	client      *http.Client
	cache       Cache
	ttl         TTL
	policy      retry.Policy
	ignore      []*regexp.Regexp
	concurrency int
	userAgent   string
	now         func() time.Time
}

// NewChecker builds a checker from link_check settings. A nil cache means no caching.
func NewChecker(cfg config.LinkCheckConfig, cache Cache) (*Checker, error) {
	ignore := make([]*regexp.Regexp, 0, len(cfg.Ignore))
	for _, g := range cfg.Ignore {
		ignore = append(ignore, globToRegexp(g))
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	policy := retry.FromConfig(cfg.Retry)
	if err := policy.Validate(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid link_check retry policy").Build()
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Checker{
		client:      &http.Client{Timeout: cfg.Timeout.D()},
		cache:       cache,
		ttl:         TTL{Success: cfg.TTL.D(), Failure: cfg.FailureTTL.D()},
		policy:      policy,
		ignore:      ignore,
		concurrency: concurrency,
		userAgent:   cfg.UserAgent,
		now:         time.Now,
	}, nil
}

// WithHTTPClient replaces the HTTP client (tests point it at httptest servers).
func (c *Checker) WithHTTPClient(hc *http.Client) *Checker {
	c.client = hc
	return c
}

// globToRegexp turns a glob where "*" matches any run of characters into an anchored regexp.
func globToRegexp(glob string) *regexp.Regexp {
	parts := strings.Split(glob, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

func (c *Checker) ignored(u string) bool {
	for _, re := range c.ignore {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

// Check verifies urls and returns one result per non-ignored URL in input order.
func (c *Checker) Check(ctx context.Context, urls []string) ([]Result, error) {
	var todo []string
	for _, u := range urls {
		if !c.ignored(u) {
			todo = append(todo, u)
		}
	}
	results := make([]Result, len(todo))
	sem := make(chan struct{}, c.concurrency)
	var wg sync.WaitGroup

	for i, u := range todo {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = c.checkCached(ctx, u)
		}(i, u)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Checker) checkCached(ctx context.Context, u string) Result {
	cached, err := c.cache.Get(ctx, u)
	if err != nil {
		slog.Debug("Cache lookup error", logfields.URL(u), logfields.Error(err))
	}
	if c.ttl.Fresh(cached, c.now()) {
		return Result{URL: u, Status: cached.Status, OK: cached.OK, Err: cached.Error, Cached: true}
	}

	status, checkErr := c.checkWithRetry(ctx, u)
	res := Result{URL: u, Status: status, OK: checkErr == nil}
	entry := &Entry{URL: u, Status: status, OK: res.OK, CheckedAt: c.now()}
	if checkErr != nil {
		res.Err = checkErr.Error()
		entry.Error = res.Err
		entry.FailureCount = 1
		if cached != nil && !cached.OK {
			entry.FailureCount = cached.FailureCount + 1
		}
	}
	if ctx.Err() == nil {
		if err := c.cache.Put(ctx, entry); err != nil {
			slog.Warn("Failed to update link cache", logfields.URL(u), logfields.Error(err))
		}
	}
	return res
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, http.StatusText(e.code))
}

// transient statuses are retried; every other HTTP error status is final.
func transient(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func (c *Checker) checkWithRetry(ctx context.Context, u string) (int, error) {
	var status int
	err := c.policy.Do(ctx, func(int) error {
		var err error
		status, err = c.checkOnce(ctx, u)
		return err
	}, func(err error) bool {
		var se *statusError
		return errors.As(err, &se) && !transient(se.code)
	})
	return status, err
}

// checkOnce sends HEAD and falls back to GET for servers that reject HEAD.
func (c *Checker) checkOnce(ctx context.Context, u string) (int, error) {
	code, err := c.request(ctx, http.MethodHead, u)
	if err == nil && (code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented || code == http.StatusNotFound) {
		code, err = c.request(ctx, http.MethodGet, u)
	}
	if err != nil {
		return 0, err
	}
	// The URL exists but needs credentials.
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return code, nil
	}
	if code >= 400 {
		return code, &statusError{code: code}
	}
	return code, nil
}

func (c *Checker) request(ctx context.Context, method, u string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, nil
}

// CheckPages checks the external links of pages and reports each failure at every
// page that links to it.
func (c *Checker) CheckPages(ctx context.Context, pages []Rendered) ([]Issue, error) {
	urls := ExternalURLs(pages)
	results, err := c.Check(ctx, urls)
	if err != nil {
		return nil, err
	}
	failed := make(map[string]Result)
	for _, r := range results {
		if !r.OK {
			failed[r.URL] = r
		}
	}
	var issues []Issue
	for _, p := range pages {
		for _, l := range p.Links {
			r, bad := failed[l.Destination]
			if !bad {
				continue
			}
			issues = append(issues, Issue{
				Kind: KindExternal, Level: config.LevelWarn, Page: p.Src, Link: l.Destination, Line: l.Line,
				Message: fmt.Sprintf("external link %q failed: %s", l.Destination, r.Err),
			})
		}
	}
	Sort(issues)
	return issues, nil
}

func isHTTP(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// OpenCache opens the cache backend selected in cfg.
func OpenCache(ctx context.Context, cfg *config.Config) (Cache, error) {
	lc := cfg.LinkCheck
	switch lc.Cache {
	case config.CacheSQLite:
		c, err := NewSQLiteCache(cfg.Resolve(lc.SQLitePath))
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open link cache").
				WithContext("path", lc.SQLitePath).Build()
		}
		return c, nil
	case config.CacheNATS:
		c, err := NewNATSCache(ctx, lc.NATSURL, lc.KVBucket)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "open link cache").
				WithContext("url", lc.NATSURL).Retryable().Build()
		}
		return c, nil
	default:
		return NewMemoryCache(), nil
	}
}

// CheckExternal opens the configured cache, checks the external links of pages and
// closes the cache again.
func CheckExternal(ctx context.Context, cfg *config.Config, pages []Rendered) ([]Issue, error) {
	cache, err := OpenCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := cache.Close(); cerr != nil {
			slog.Warn("Failed to close link cache", logfields.Error(cerr))
		}
	}()
	checker, err := NewChecker(cfg.LinkCheck, cache)
	if err != nil {
		return nil, err
	}
	return checker.CheckPages(ctx, pages)
}
