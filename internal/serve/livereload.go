package serve

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/metrics"
)

const (
	// reloadEvent is the data line the theme's live reload script reacts to.
	reloadEvent = "reload"

	// keepAlive stops proxies from closing idle event streams.
	keepAlive = 30 * time.Second
)

// LiveReloadHub serves /livereload as a server-sent event stream and tells every
// open page to reload after a successful rebuild.
type LiveReloadHub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	stopped  bool
	recorder metrics.Recorder
}

// subscriber is one open browser tab. pending holds at most one queued event
// since two reloads in a row are the same as one.
type subscriber struct {
	pending chan struct{}
	gone    chan struct{}
	once    sync.Once
}

func (s *subscriber) close() { s.once.Do(func() { close(s.gone) }) }

// NewLiveReloadHub records broadcasts on rec, or nowhere when rec is nil.
func NewLiveReloadHub(rec metrics.Recorder) *LiveReloadHub {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &LiveReloadHub{subs: map[*subscriber]struct{}{}, recorder: rec}
}

func (h *LiveReloadHub) subscribe() (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return nil, false
	}
	s := &subscriber{pending: make(chan struct{}, 1), gone: make(chan struct{})}
	h.subs[s] = struct{}{}
	return s, true
}

func (h *LiveReloadHub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.close()
}

func (h *LiveReloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sub, ok := h.subscribe()
	if !ok {
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(sub)

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")

	emit := func(frame string) bool {
		if _, err := fmt.Fprint(w, frame); err != nil {
			slog.Debug("Live reload client went away", "error", err)
			return false
		}
		flusher.Flush()
		return true
	}
	if !emit(": connected\n\n") {
		return
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.gone:
			return
		case <-ticker.C:
			if !emit(": ping\n\n") {
				return
			}
		case <-sub.pending:
			if !emit("data: " + reloadEvent + "\n\n") {
				return
			}
		}
	}
}

// Clients is the number of open event streams.
func (h *LiveReloadHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast queues a reload for every subscriber. It never blocks: a subscriber
// that still has a reload pending already gets this one.
func (h *LiveReloadHub) Broadcast() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	n := len(h.subs)
	for s := range h.subs {
		select {
		case s.pending <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()

	h.recorder.IncReloadBroadcast()
	slog.Debug("Live reload broadcast", "clients", n)
}

// Shutdown ends every open stream and refuses new ones.
func (h *LiveReloadHub) Shutdown() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	subs := h.subs
	h.subs = map[*subscriber]struct{}{}
	h.mu.Unlock()

	for s := range subs {
		s.close()
	}
}
