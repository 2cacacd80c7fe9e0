package serve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DebounceWindow is how long the watcher waits for a burst of events to settle.
const DebounceWindow = 300 * time.Millisecond

// debouncer coalesces calls to Trigger into one send on C after the quiet window.
type debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
	C      chan struct{}
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, C: make(chan struct{}, 1)}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		select {
		case d.C <- struct{}{}:
		default:
		}
	})
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// watcher follows the docs tree, the config file and the theme's custom_dir.
type watcher struct {
	fs      *fsnotify.Watcher
	dirs    []string
	files   map[string]bool
	onEvent func(path string)
}

// newWatcher watches every directory below dirs and the given files. Missing entries
// are skipped.
func newWatcher(dirs, files []string, onEvent func(path string)) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "create file watcher").Build()
	}
	w := &watcher{fs: fw, files: map[string]bool{}, onEvent: onEvent}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if st, err := os.Stat(d); err != nil || !st.IsDir() {
			continue
		}
		w.dirs = append(w.dirs, d)
		w.addDirsRecursive(d)
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		// Editors replace files on save; watching the parent catches the rename.
		w.files[filepath.Clean(f)] = true
		if err := fw.Add(filepath.Dir(f)); err != nil {
			slog.Warn("watch add failed", logfields.Path(f), logfields.Error(err))
		}
	}
	return w, nil
}

func (w *watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) || !w.relevant(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.onEvent(ev.Name)
}

// relevant filters events from parent directories watched only for a single file.
func (w *watcher) relevant(path string) bool {
	if w.files[filepath.Clean(path)] {
		return true
	}
	for _, d := range w.dirs {
		if path == d || strings.HasPrefix(path, d+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.fs.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

func (w *watcher) close() error { return w.fs.Close() }

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including editor locks like .#file
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db" || base == "4913"
}
