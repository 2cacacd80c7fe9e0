package links

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached external link check result.
type Entry struct {
	URL          string    `json:"url"`
	Status       int       `json:"status"`
	OK           bool      `json:"ok"`
	Error        string    `json:"error,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
	FailureCount int       `json:"failure_count"`
}

// Cache stores external link results between runs. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, url string) (*Entry, error)
	Put(ctx context.Context, e *Entry) error
	Close() error
}

// TTL decides whether a cached entry is still usable.
type TTL struct {
	Success time.Duration
	Failure time.Duration
}

// Fresh reports whether e was checked recently enough relative to now.
func (t TTL) Fresh(e *Entry, now time.Time) bool {
	if e == nil {
		return false
	}
	ttl := t.Failure
	if e.OK {
		ttl = t.Success
	}
	return now.Sub(e.CheckedAt) < ttl
}

// MemoryCache keeps results for the lifetime of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[url]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *MemoryCache) Put(_ context.Context, e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.URL] = *e
	return nil
}

func (c *MemoryCache) Close() error { return nil }
