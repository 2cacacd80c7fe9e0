// Package commands implements the docsite command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Global carries state shared by all subcommands.
type Global struct {
	// Out receives user-facing command output. Logs go to stderr.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"docsite.yml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text or json)" default:"text" enum:"text,json"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the site into site_dir"`
	Serve    ServeCmd    `cmd:"" help:"Serve the site locally and rebuild on change"`
	Check    CheckCmd    `cmd:"" help:"Validate configuration, navigation and links without writing the site"`
	Lint     LintCmd     `cmd:"" help:"Lint documentation sources"`
	New      NewCmd      `cmd:"" help:"Create a starter configuration and docs directory"`
	Versions VersionsCmd `cmd:"" help:"Manage versioned deployments in the publish directory"`
	Publish  PublishCmd  `cmd:"" help:"Commit the built site to the publish branch and push it"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// ExitError ends the process with Code without printing anything further. Commands
// that already reported their findings use it to signal the outcome.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.Config)
}
