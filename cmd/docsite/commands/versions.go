package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/versioning"
)

// VersionsCmd groups the versioned-deployment subcommands.
type VersionsCmd struct {
	PublishDir string `name:"publish-dir" help:"Versioned publish directory (overrides versioning.publish_dir)"`

	Deploy     VersionsDeployCmd     `cmd:"" help:"Build the site and deploy it as a version"`
	Alias      VersionsAliasCmd      `cmd:"" help:"Point an alias at a deployed version"`
	SetDefault VersionsSetDefaultCmd `cmd:"" name:"set-default" help:"Redirect the publish root to a version or alias"`
	Delete     VersionsDeleteCmd     `cmd:"" help:"Remove a deployed version and its aliases"`
	Retitle    VersionsRetitleCmd    `cmd:"" help:"Change the display title of a version"`
	List       VersionsListCmd       `cmd:"" help:"List deployed versions"`
}

func (v *VersionsCmd) manager(cfg *config.Config) *versioning.Manager {
	dir := cfg.Versioning.PublishDir
	if v.PublishDir != "" {
		dir = v.PublishDir
	}
	return versioning.NewManager(cfg.Versioning, cfg.Resolve(dir))
}

func (v *VersionsCmd) open(root *CLI) (*config.Config, *versioning.Manager, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, v.manager(cfg), nil
}

// VersionsDeployCmd implements 'versions deploy'.
type VersionsDeployCmd struct {
	Version       string   `arg:"" help:"Version name, for example 1.2"`
	Title         string   `help:"Display title (defaults to the version name)"`
	Aliases       []string `name:"alias" help:"Alias to point at this version (repeatable)"`
	UpdateAliases bool     `name:"update-aliases" help:"Move aliases that currently point at another version"`
	NoBuild       bool     `name:"no-build" help:"Deploy the existing site_dir without rebuilding"`
}

func (d *VersionsDeployCmd) Run(g *Global, parent *VersionsCmd, root *CLI) error {
	cfg, m, err := parent.open(root)
	if err != nil {
		return err
	}
	siteDir := cfg.SitePath()
	if !d.NoBuild {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		res, err := RunBuild(ctx, g.out(), cfg, "", false)
		if err != nil {
			return err
		}
		siteDir = res.SiteDir
	}
	if err := m.Deploy(siteDir, d.Version, versioning.DeployOptions{
		Title:         d.Title,
		Aliases:       d.Aliases,
		UpdateAliases: d.UpdateAliases,
	}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Deployed %s to %s\n", d.Version, m.Root())
	return nil
}

// VersionsAliasCmd implements 'versions alias'.
type VersionsAliasCmd struct {
	Version       string `arg:"" help:"Deployed version"`
	Alias         string `arg:"" help:"Alias name, for example latest"`
	UpdateAliases bool   `name:"update-aliases" help:"Move the alias if it points at another version"`
}

func (a *VersionsAliasCmd) Run(g *Global, parent *VersionsCmd, root *CLI) error {
	_, m, err := parent.open(root)
	if err != nil {
		return err
	}
	if err := m.Alias(a.Version, a.Alias, a.UpdateAliases); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "%s -> %s\n", a.Alias, a.Version)
	return nil
}

// VersionsSetDefaultCmd implements 'versions set-default'.
type VersionsSetDefaultCmd struct {
	Name string `arg:"" help:"Version or alias the publish root redirects to"`
}

func (s *VersionsSetDefaultCmd) Run(g *Global, parent *VersionsCmd, root *CLI) error {
	_, m, err := parent.open(root)
	if err != nil {
		return err
	}
	if err := m.SetDefault(s.Name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Default version is now %s\n", s.Name)
	return nil
}

// VersionsDeleteCmd implements 'versions delete'.
type VersionsDeleteCmd struct {
	Version string `arg:"" help:"Version to remove"`
}

func (d *VersionsDeleteCmd) Run(g *Global, parent *VersionsCmd, root *CLI) error {
	_, m, err := parent.open(root)
	if err != nil {
		return err
	}
	if err := m.Delete(d.Version); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Deleted %s\n", d.Version)
	return nil
}

// VersionsRetitleCmd implements 'versions retitle'.
type VersionsRetitleCmd struct {
	Version string `arg:"" help:"Deployed version"`
	Title   string `arg:"" help:"New display title"`
}

func (r *VersionsRetitleCmd) Run(_ *Global, parent *VersionsCmd, root *CLI) error {
	_, m, err := parent.open(root)
	if err != nil {
		return err
	}
	return m.Retitle(r.Version, r.Title)
}

// VersionsListCmd implements 'versions list'.
type VersionsListCmd struct {
	JSON bool `name:"json" help:"Print versions.json instead of a table"`
}

func (l *VersionsListCmd) Run(g *Global, parent *VersionsCmd, root *CLI) error {
	_, m, err := parent.open(root)
	if err != nil {
		return err
	}
	list, err := m.List()
	if err != nil {
		return err
	}
	out := g.out()
	if l.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "encode version list").Build()
		}
		return nil
	}
	def, err := m.Default()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tTITLE\tALIASES\tDEFAULT")
	for _, v := range list {
		mark := ""
		if def != "" && (def == v.Version || v.HasAlias(def)) {
			mark = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Version, v.Title, strings.Join(v.Aliases, ","), mark)
	}
	return tw.Flush()
}
