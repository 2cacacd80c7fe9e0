package build

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/links"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/nav"
	"git.home.luguber.info/inful/docsite/internal/redirects"
	"git.home.luguber.info/inful/docsite/internal/theme"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

// Builder runs the site pipeline for one configuration.
type Builder struct {
	cfg        *config.Config
	recorder   metrics.Recorder
	liveReload bool
}

// New creates a builder. The configuration must already be validated.
func New(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg, recorder: metrics.NoopRecorder{}}
}

// WithRecorder attaches a metrics recorder (nil resets to no-op).
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	b.recorder = r
	return b
}

// WithLiveReload makes pages include the live reload client.
func (b *Builder) WithLiveReload(on bool) *Builder {
	b.liveReload = on
	return b
}

// Result is what a build leaves behind besides the files in site_dir.
type Result struct {
	Report   *Report
	SiteDir  string
	Corpus   *content.Corpus
	Tree     *nav.Tree
	Pages    []links.Rendered
	Manifest *OutputManifest
}

// run holds the state of one pipeline execution. Stages fill it in order.
type run struct {
	cfg      *config.Config
	recorder metrics.Recorder
	report   *Report
	live     bool

	corpus    *content.Corpus
	tree      *nav.Tree
	redirects *redirects.Set
	bodies    map[string][]byte
	rendered  map[string]*markdown.Result
	pages     []links.Rendered
	theme     *theme.Theme
	ws        *workspace.Manager
	out       *output
	manifest  *OutputManifest
}

// Build runs every stage and replaces site_dir with the result. The report is always
// persisted to report_dir, also when the build fails.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	return b.execute(ctx, true)
}

// Check runs the validation stages (discover through render) without writing a site.
func (b *Builder) Check(ctx context.Context) (*Result, error) {
	return b.execute(ctx, false)
}

func (b *Builder) execute(ctx context.Context, write bool) (*Result, error) {
	start := time.Now()
	r := &run{
		cfg:      b.cfg,
		recorder: b.recorder,
		report:   newReport(uuid.NewString(), start),
		live:     b.liveReload,
		bodies:   map[string][]byte{},
		rendered: map[string]*markdown.Result{},
	}
	slog.Info("Build started", logfields.BuildID(r.report.BuildID), logfields.Path(b.cfg.DocsPath()))

	stages := []struct {
		name StageName
		fn   func(context.Context) error
	}{
		{StageDiscover, r.discover},
		{StageNav, r.navigation},
		{StageRedirects, r.loadRedirects},
		{StageMacros, r.macros},
		{StageRender, r.render},
	}
	if write {
		stages = append(stages, []struct {
			name StageName
			fn   func(context.Context) error
		}{
			{StageAssets, r.assets},
			{StageSearch, r.search},
			{StageSitemap, r.sitemap},
			{StageWrite, r.write},
		}...)
		r.ws = workspace.NewManager(filepath.Dir(b.cfg.SitePath()), "docsite-staging")
		defer func() {
			if err := r.ws.Cleanup(); err != nil {
				slog.Warn("Failed to remove staging directory", logfields.Error(err))
			}
		}()
	}

	var err error
	for _, s := range stages {
		if err = r.stage(ctx, s.name, s.fn); err != nil {
			break
		}
	}
	if !write && err == nil {
		err = r.strictError()
	}

	canceled := isCanceled(err)
	r.report.finish(time.Now(), err, canceled)
	duration := r.report.End.Sub(start)
	b.recorder.ObserveBuildDuration(duration)
	b.recorder.IncBuildOutcome(string(r.report.Outcome))

	if perr := r.report.Persist(b.cfg.ReportPath()); perr != nil {
		slog.Warn("Failed to persist build report", logfields.Path(b.cfg.ReportPath()), logfields.Error(perr))
	}

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	slog.Log(context.Background(), level, r.report.Summary(),
		logfields.BuildID(r.report.BuildID),
		logfields.Outcome(string(r.report.Outcome)),
		logfields.DurationMS(float64(duration.Microseconds())/1000))

	res := &Result{Report: r.report, Corpus: r.corpus, Tree: r.tree, Pages: r.pages, Manifest: r.manifest}
	if write && err == nil {
		res.SiteDir = b.cfg.SitePath()
	}
	return res, err
}

// stage times one step, converts cancellation and records the stage result.
func (r *run) stage(ctx context.Context, name StageName, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return canceledError(err, name)
	}
	started := time.Now()
	warningsBefore := r.report.Count(SeverityWarning)

	err := fn(ctx)
	if err != nil && ctx.Err() != nil && !isCanceled(err) {
		err = canceledError(ctx.Err(), name)
	}

	d := time.Since(started)
	r.report.StageDurations[name] = d
	r.recorder.ObserveStageDuration(string(name), d)

	if err != nil && !isCanceled(err) {
		r.report.addIssue(name, SeverityError, string(errors.GetCategory(err)), "", err.Error())
	}
	label := metrics.ResultFor(isCanceled(err), err != nil, r.report.Count(SeverityWarning) > warningsBefore)
	r.recorder.IncStageResult(string(name), label)
	slog.Debug("Stage finished",
		logfields.BuildID(r.report.BuildID),
		logfields.Stage(string(name)),
		logfields.Outcome(string(label)),
		logfields.DurationMS(float64(d.Microseconds())/1000))
	return err
}

func canceledError(err error, stage StageName) error {
	return errors.WrapError(err, errors.CategoryBuild, "build canceled").
		WithContext("stage", string(stage)).Build()
}

func isCanceled(err error) bool {
	return err != nil && (stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded))
}

// levelIssue records a finding at its configured level. Ignored findings are dropped.
func (r *run) levelIssue(stage StageName, level config.Level, kind, page, msg string) {
	switch level {
	case config.LevelIgnore:
		return
	case config.LevelInfo:
		r.report.addIssue(stage, SeverityInfo, kind, page, msg)
	default:
		r.report.addIssue(stage, SeverityWarning, kind, page, msg)
	}
}

func (r *run) warn(stage StageName, kind, page, msg string) {
	r.report.addIssue(stage, SeverityWarning, kind, page, msg)
	slog.Warn(msg, logfields.Stage(string(stage)), logfields.Page(page))
}

// strictError turns recorded warnings into a failure when strict mode is on.
func (r *run) strictError() error {
	if !r.cfg.Strict {
		return nil
	}
	n := r.report.Count(SeverityWarning)
	if n == 0 {
		return nil
	}
	return errors.BuildError(fmt.Sprintf("strict mode: %d warning(s) abort the build", n)).
		WithContext("warnings", n).Build()
}
