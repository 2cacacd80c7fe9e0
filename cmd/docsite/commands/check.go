package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/links"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

// CheckCmd implements the 'check' command. Every warning fails it.
type CheckCmd struct {
	HTML     bool `name:"html" help:"Also build into a scratch directory and verify links in the generated HTML"`
	External bool `help:"Also check external URLs"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunCheck(ctx, g.out(), cfg, c.HTML, c.External)
}

// RunCheck validates cfg strictly. It never writes site_dir.
func RunCheck(ctx context.Context, out io.Writer, cfg *config.Config, html, external bool) error {
	cfg.Strict = true

	res, err := build.New(cfg).Check(ctx)
	if err != nil {
		return err
	}
	for _, i := range res.Report.Issues {
		_, _ = fmt.Fprintf(out, "%s: %s: %s\n", i.Severity, i.Page, i.Message)
	}

	var found []links.Issue
	if html {
		issues, err := checkHTML(ctx, cfg)
		if err != nil {
			return err
		}
		found = append(found, issues...)
	}
	if external {
		issues, err := links.CheckExternal(ctx, cfg, res.Pages)
		if err != nil {
			return err
		}
		found = append(found, issues...)
	}
	printLinkIssues(out, found)
	if len(found) > 0 {
		return errors.LinksError(fmt.Sprintf("%d broken link(s)", len(found))).Build()
	}
	_, _ = fmt.Fprintf(out, "Check passed: %d page(s)\n", len(res.Pages))
	return nil
}

func checkHTML(ctx context.Context, cfg *config.Config) ([]links.Issue, error) {
	ws := workspace.NewManager("", "docsite-check")
	if err := ws.Create(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create check directory").Build()
	}
	defer func() { _ = ws.Cleanup() }()

	scratch := *cfg
	scratch.SiteDir = filepath.Join(ws.Path(), "site")
	scratch.ReportDir = filepath.Join(ws.Path(), "report")
	res, err := build.New(&scratch).Build(ctx)
	if err != nil {
		return nil, err
	}
	return links.CheckSite(res.SiteDir)
}
