package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docsite/internal/publish"
)

// PublishCmd implements the 'publish' command (gh-deploy).
type PublishCmd struct {
	NoPush   bool   `name:"no-push" help:"Commit to the local clone only"`
	NoBuild  bool   `name:"no-build" help:"Publish the existing site_dir without rebuilding"`
	Versions bool   `help:"Publish the versioned publish directory instead of site_dir"`
	Message  string `short:"m" help:"Commit message; %s is replaced by the source revision (overrides publish.message)"`
	Remote   string `help:"Remote URL (overrides publish.remote_url)"`
	Branch   string `short:"b" help:"Target branch (overrides publish.branch)"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if p.Message != "" {
		cfg.Publish.Message = p.Message
	}
	if p.Remote != "" {
		cfg.Publish.RemoteURL = p.Remote
	}
	if p.Branch != "" {
		cfg.Publish.Branch = p.Branch
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := g.out()
	dir := cfg.SitePath()
	switch {
	case p.Versions:
		dir = cfg.Resolve(cfg.Versioning.PublishDir)
	case !p.NoBuild:
		res, err := RunBuild(ctx, out, cfg, "", false)
		if err != nil {
			return err
		}
		dir = res.SiteDir
	}

	res, err := publish.New(cfg).WithNoPush(p.NoPush).Publish(ctx, dir)
	if err != nil {
		return err
	}
	switch {
	case !res.Changed:
		_, _ = fmt.Fprintf(out, "Branch %s already up to date\n", res.Branch)
	case res.Pushed:
		_, _ = fmt.Fprintf(out, "Published %s to %s (%s)\n", dir, res.Branch, res.Commit)
	default:
		_, _ = fmt.Fprintf(out, "Committed %s on %s without pushing\n", res.Commit, res.Branch)
	}
	return nil
}
