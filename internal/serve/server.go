// Package serve runs the development server: it builds the site into a scratch
// directory, serves it over HTTP and rebuilds on change, telling browsers to reload.
package serve

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/links"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

// StatusPath reports the latest build outcome as JSON.
const StatusPath = "/_docsite/status"

const shutdownTimeout = 5 * time.Second

// Options tune a Server.
type Options struct {
	// Addr overrides serve.addr.
	Addr string
	// SiteDir is where builds go. Empty means a scratch directory removed on exit.
	SiteDir string
}

// Server is the development server.
type Server struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string
	addr       string
	siteDir    string
	pages      []links.Rendered
	reloadCfg  bool

	recorder metrics.Recorder
	registry *prom.Registry
	hub      *LiveReloadHub
	status   *buildStatus
	worker   *rebuildWorker
	httpErrs *errors.HTTPErrorAdapter

	ready     chan struct{}
	boundAddr string
}

// New creates a server for cfg. serve.metrics enables /metrics.
func New(cfg *config.Config, opts Options) *Server {
	s := &Server{
		cfg:        cfg,
		configPath: cfg.Path(),
		addr:       cfg.Serve.Addr,
		siteDir:    opts.SiteDir,
		recorder:   metrics.NoopRecorder{},
		status:     &buildStatus{},
		httpErrs:   errors.NewHTTPErrorAdapter(nil),
		ready:      make(chan struct{}),
	}
	if opts.Addr != "" {
		s.addr = opts.Addr
	}
	if cfg.Serve.Metrics {
		s.registry = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}
	s.hub = NewLiveReloadHub(s.recorder)
	s.worker = newRebuildWorker(func(ctx context.Context) { _ = s.Rebuild(ctx) })
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	mux.HandleFunc(StatusPath, s.handleStatus)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	mux.Handle("/", &siteHandler{root: s.SiteDir, status: s.status})
	return mux
}

// SiteDir returns the directory builds are written to.
func (s *Server) SiteDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.siteDir
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound listen address once Ready is closed.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundAddr
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	good, err := s.status.get()
	if err != nil {
		s.httpErrs.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !good {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"building"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Rebuild builds the site once, records the outcome and tells browsers to reload.
// A changed config file is reloaded first.
func (s *Server) Rebuild(ctx context.Context) error {
	cfg, err := s.currentConfig()
	if err == nil {
		var res *build.Result
		res, err = build.New(cfg).WithRecorder(s.recorder).WithLiveReload(true).Build(ctx)
		if err == nil {
			s.mu.Lock()
			s.pages = res.Pages
			s.mu.Unlock()
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
		s.status.setError(err)
	} else {
		slog.Info("Site rebuilt")
		s.status.setSuccess()
	}
	s.hub.Broadcast()
	return err
}

// currentConfig returns the build configuration, reloading the config file when it
// changed. The output always goes to the server's site directory.
func (s *Server) currentConfig() (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reloadCfg && s.configPath != "" {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			return nil, err
		}
		s.cfg = cfg
		s.reloadCfg = false
		slog.Info("Reloaded configuration", logfields.Path(s.configPath))
	}
	c := *s.cfg
	c.SiteDir = s.siteDir
	return &c, nil
}

func (s *Server) onChange(path string) {
	if path == s.configPath {
		s.mu.Lock()
		s.reloadCfg = true
		s.mu.Unlock()
	}
}

// Run builds, serves and watches until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	if s.siteDir == "" {
		ws := workspace.NewManager("", "docsite-serve")
		if err := ws.Create(); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create serve directory").Build()
		}
		defer func() { _ = ws.Cleanup() }()
		s.mu.Lock()
		s.siteDir = ws.Path()
		s.mu.Unlock()
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "listen").WithContext("addr", s.addr).Build()
	}
	s.mu.Lock()
	s.boundAddr = ln.Addr().String()
	s.mu.Unlock()
	close(s.ready)

	if err := s.Rebuild(ctx); err != nil && ctx.Err() == nil {
		slog.Error("Initial build failed; serving the error page until it is fixed", logfields.Error(err))
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	slog.Info("Serving documentation", logfields.URL("http://"+s.Addr()+"/"))

	deb := newDebouncer(DebounceWindow)
	defer deb.Stop()
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()
	dirs := []string{cfg.DocsPath()}
	if cfg.Theme.CustomDir != "" {
		dirs = append(dirs, cfg.Resolve(cfg.Theme.CustomDir))
	}
	w, err := newWatcher(dirs, []string{s.configPath}, func(path string) {
		s.onChange(path)
		deb.Trigger()
	})
	if err != nil {
		_ = srv.Close()
		return err
	}
	defer func() { _ = w.close() }()

	go w.run(ctx)
	go s.worker.run(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-deb.C:
				s.worker.Request()
			}
		}
	}()

	sched, err := s.startJobs(ctx, cfg)
	if err != nil {
		_ = srv.Close()
		return err
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !stdErrors.Is(err, http.ErrServerClosed) {
			return errors.WrapError(err, errors.CategoryNetwork, "http server failed").Build()
		}
	}

	slog.Info("Shutting down server...")
	s.hub.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	return nil
}
