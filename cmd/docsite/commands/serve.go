package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docsite/internal/serve"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `short:"a" help:"Listen address (overrides serve.addr)"`
	SiteDir string `name:"site-dir" help:"Keep builds in this directory instead of a temporary one"`
	Metrics bool   `help:"Expose Prometheus metrics on /metrics"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if s.Metrics {
		cfg.Serve.Metrics = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return serve.New(cfg, serve.Options{Addr: s.Addr, SiteDir: s.SiteDir}).Run(ctx)
}
