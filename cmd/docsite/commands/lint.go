package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/lint"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// LintCmd implements the 'lint' command.
type LintCmd struct {
	Path   string `arg:"" optional:"" help:"File or directory to lint. Defaults to docs_dir, then docs/, then the current directory"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet  bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Fix    bool   `help:"Automatically fix issues where possible"`
	DryRun bool   `name:"dry-run" help:"Show what would be fixed without applying changes (requires --fix)"`
	Rules  string `name:"rules" help:"Lint rule configuration (TOML); overrides lint.config"`
}

// Run lints and exits 0 when clean, 1 with warnings only and 2 with errors.
func (l *LintCmd) Run(g *Global, root *CLI) error {
	if l.DryRun && !l.Fix {
		return errors.ValidationError("--dry-run requires --fix flag").Build()
	}
	path, rulesPath := l.resolvePaths(root)
	if root.Verbose {
		slog.Debug("Linting", logfields.Path(path), slog.String("rules", rulesPath))
	}
	if _, err := os.Stat(path); err != nil {
		return errors.LintError("path does not exist").WithContext("path", path).Build()
	}
	lcfg, err := lint.LoadConfig(rulesPath)
	if err != nil {
		return err
	}

	out := g.out()
	if l.Fix {
		return runFixer(out, lcfg, path, l.DryRun)
	}

	result, err := lint.NewLinter(lcfg, lint.Options{Quiet: l.Quiet}).LintPath(path)
	if err != nil {
		return err
	}
	if err := lint.NewFormatter(l.Format).Format(out, result, path); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "format lint output").Build()
	}
	if code := result.ExitCode(); code != 0 && !(l.Quiet && code == 1) {
		return ExitError{Code: code}
	}
	return nil
}

// resolvePaths picks the lint target and the rule file. A readable configuration
// supplies docs_dir and lint.config; without one the defaults relative to the working
// directory apply.
func (l *LintCmd) resolvePaths(root *CLI) (string, string) {
	path, rules := l.Path, l.Rules
	cfg, err := root.loadConfig()
	if err == nil {
		if path == "" {
			path = cfg.DocsPath()
		}
		if rules == "" {
			rules = cfg.Resolve(cfg.Lint.Config)
		}
	} else {
		slog.Debug("No usable configuration for lint defaults", logfields.Error(err))
	}
	if path == "" {
		path = "."
		if st, err := os.Stat(config.DefaultDocsDir); err == nil && st.IsDir() {
			path = config.DefaultDocsDir
		}
	}
	if rules == "" {
		rules = config.DefaultLintConfig
	}
	return path, rules
}

func runFixer(out io.Writer, cfg *lint.Config, path string, dryRun bool) error {
	result, err := lint.NewFixer(cfg, dryRun).Fix(path)
	if err != nil {
		return err
	}
	if dryRun {
		_, _ = fmt.Fprintln(out, "DRY RUN: No changes will be applied")
	}
	for _, f := range result.Files {
		_, _ = fmt.Fprintf(out, "  %s\n", f.Path)
	}
	_, _ = fmt.Fprintln(out, result.Summary())
	return nil
}
