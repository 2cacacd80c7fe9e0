package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/links"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Strict  bool   `help:"Treat warnings as errors (overrides strict in the config)"`
	SiteDir string `name:"site-dir" short:"d" help:"Output directory (overrides site_dir)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = RunBuild(ctx, g.out(), cfg, b.SiteDir, b.Strict)
	return err
}

// RunBuild builds cfg into siteDir (site_dir when empty). With link_check.enabled the
// external links of the fresh site are checked too; in strict mode a failure there
// fails the command.
func RunBuild(ctx context.Context, out io.Writer, cfg *config.Config, siteDir string, strict bool) (*build.Result, error) {
	if siteDir != "" {
		cfg.SiteDir = siteDir
	}
	if strict {
		cfg.Strict = true
	}

	res, err := build.New(cfg).Build(ctx)
	if err != nil {
		return res, err
	}
	_, _ = fmt.Fprintln(out, res.Report.Summary())

	if !cfg.LinkCheck.Enabled {
		return res, nil
	}
	issues, err := links.CheckExternal(ctx, cfg, res.Pages)
	if err != nil {
		return res, err
	}
	printLinkIssues(out, issues)
	if len(issues) > 0 && cfg.Strict {
		return res, errors.LinksError(fmt.Sprintf("%d broken external link(s) in strict mode", len(issues))).
			WithContext("site_dir", res.SiteDir).Build()
	}
	return res, nil
}

func printLinkIssues(out io.Writer, issues []links.Issue) {
	for _, i := range issues {
		slog.Debug("Link issue", logfields.Page(i.Page), logfields.Link(i.Link), slog.String("kind", string(i.Kind)))
		_, _ = fmt.Fprintf(out, "%s: %s\n", i.Level, i)
	}
}
