package serve

import (
	"context"
	"sync"
)

// buildStatus tracks the outcome of the latest build for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.hasGoodBuild = true
}

func (bs *buildStatus) get() (hasGoodBuild bool, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.hasGoodBuild, bs.lastError
}

// rebuildWorker runs builds one at a time. Requests that arrive during a build collapse
// into a single follow-up build.
type rebuildWorker struct {
	build    func(ctx context.Context)
	requests chan struct{}

	mu      sync.Mutex
	running bool
	pending bool
}

func newRebuildWorker(build func(ctx context.Context)) *rebuildWorker {
	return &rebuildWorker{build: build, requests: make(chan struct{}, 1)}
}

// Request asks for a build without blocking.
func (w *rebuildWorker) Request() {
	w.mu.Lock()
	if w.running {
		w.pending = true
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *rebuildWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
		}
		for {
			w.mu.Lock()
			w.running = true
			w.pending = false
			w.mu.Unlock()

			w.build(ctx)

			w.mu.Lock()
			w.running = false
			again := w.pending && ctx.Err() == nil
			w.pending = false
			w.mu.Unlock()
			if !again {
				break
			}
		}
	}
}
