package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// Config configures watch mode.
type Config struct {
	ContentDir string
	OutputDir  string
	// Addr is the listen address, e.g. ":8000".
	Addr string
	// FullRebuildEvery schedules forced rebuilds; zero disables them.
	FullRebuildEvery time.Duration
	// Registry is exposed on /metrics when set.
	Registry *prom.Registry
	// Ready, when set, receives the server once it is listening.
	Ready func(*Server)
}

// Run performs an initial build, serves the output and rebuilds on change
// until ctx is canceled. A failed build is logged and reported on /healthz;
// the next change retries it.
func Run(ctx context.Context, cfg Config, build BuildFunc) error {
	contentDir, err := filepath.Abs(cfg.ContentDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid content directory").Build()
	}
	if st, statErr := os.Stat(contentDir); statErr != nil || !st.IsDir() {
		return ferrors.ValidationError("content directory not found or not a directory").
			WithContext("path", contentDir).
			Fatal().
			Build()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", cfg.OutputDir).
			Build()
	}

	status := newBuildStatus()
	w := newWorker(build, status)
	w.runOnce(ctx, false)

	server, err := Listen(cfg.Addr, newMux(cfg.OutputDir, status, cfg.Registry))
	if err != nil {
		return err
	}
	slog.Info("Preview server listening", slog.String("url", server.URL()))
	if cfg.Ready != nil {
		cfg.Ready(server)
	}

	watcher, err := newWatcher(contentDir)
	if err != nil {
		_ = server.Stop(context.Background())
		return err
	}
	defer func() { _ = watcher.Close() }()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go w.Run(workerCtx)

	if cfg.FullRebuildEvery > 0 {
		sched, err := scheduleFullRebuild(cfg.FullRebuildEvery, w)
		if err != nil {
			_ = server.Stop(context.Background())
			return err
		}
		defer func() { _ = sched.Shutdown() }()
		slog.Info("Scheduled full rebuilds", slog.String("every", cfg.FullRebuildEvery.String()))
	}

	deb := newDebouncer(DebounceDelay, func() { w.Request(false) })
	defer deb.Stop()

	for {
		select {
		case <-ctx.Done():
			return shutdown(server)
		case ev, ok := <-watcher.Events:
			if !ok {
				return shutdown(server)
			}
			handleEvent(watcher, ev, deb.Trigger)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return shutdown(server)
			}
			slog.Warn("Watcher error", logfields.Error(werr))
		}
	}
}

func shutdown(server *Server) error {
	slog.Info("Shutting down preview server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	return nil
}
