package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/metrics"
	"git.home.luguber.info/inful/courseforge/internal/preview"
)

// WatchCmd builds the site, serves it and rebuilds on change.
type WatchCmd struct {
	SiteFlags `embed:""`

	Port             int           `short:"p" help:"Preview server port (env COURSEFORGE_WATCH_PORT)."`
	Host             string        `default:"localhost" help:"Preview server host."`
	FullRebuildEvery time.Duration `name:"full-rebuild-every" help:"Force a full rebuild at this interval (0 disables)."`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	port := w.Port
	if port == 0 {
		port = root.Settings.WatchPort
	}

	rt, err := openSite(w.SiteFlags, root.Settings)
	if err != nil {
		return err
	}
	defer rt.Close()

	reg := metrics.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	incremental := rt.builder(false, rec)
	defer func() { _ = incremental.Close() }()
	full := rt.builder(true, rec)
	defer func() { _ = full.Close() }()

	buildFn := func(ctx context.Context, force bool) error {
		b := incremental
		if force {
			b = full
		}
		_, err := b.Execute(ctx, rt.flags.Content)
		return err
	}
	return preview.Run(ctx, preview.Config{
		ContentDir:       rt.flags.Content,
		OutputDir:        rt.flags.Output,
		Addr:             fmt.Sprintf("%s:%d", w.Host, port),
		FullRebuildEvery: w.FullRebuildEvery,
		Registry:         reg,
		Ready: func(s *preview.Server) {
			_, _ = fmt.Fprintln(g.out(), "Serving site at", s.URL())
		},
	}, buildFn)
}
