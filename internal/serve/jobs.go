package serve

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/links"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// startJobs schedules the optional polling rebuild and the periodic external link check.
func (s *Server) startJobs(ctx context.Context, cfg *config.Config) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	if d := cfg.Serve.PollInterval.D(); d > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(d),
			gocron.NewTask(s.worker.Request),
			gocron.WithName("poll-rebuild"),
		); err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("failed to create poll job: %w", err)
		}
		slog.Info("Polling for changes", slog.Duration("interval", d))
	}

	if d := cfg.Serve.LinkCheckInterval.D(); d > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(d),
			gocron.NewTask(func() { s.checkExternalLinks(ctx) }),
			gocron.WithName("link-check"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("failed to create link check job: %w", err)
		}
		slog.Info("Scheduled external link check", slog.Duration("interval", d))
	}

	sched.Start()
	return sched, nil
}

// checkExternalLinks checks the external URLs of the last successful build and logs
// every broken one.
func (s *Server) checkExternalLinks(ctx context.Context) []links.Issue {
	s.mu.RLock()
	cfg := s.cfg
	pages := s.pages
	s.mu.RUnlock()
	if len(pages) == 0 {
		return nil
	}

	issues, err := links.CheckExternal(ctx, cfg, pages)
	if err != nil {
		slog.Warn("Link check failed", logfields.Error(err))
		return nil
	}
	for _, i := range issues {
		slog.Warn("Broken external link", logfields.Page(i.Page), logfields.Link(i.Link), slog.String("message", i.Message))
	}
	for kind, n := range links.CountByKind(issues) {
		s.recorder.AddLinkIssues(string(kind), n)
	}
	slog.Info("External link check finished", logfields.Count(len(issues)))
	return issues
}
