package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// BuildFunc runs one build. force asks for a full rebuild that ignores
// stored checksums.
type BuildFunc func(ctx context.Context, force bool) error

// worker serialises builds. Requests that arrive while a build runs are
// merged into a single follow-up build; a forced request makes the merged
// build forced.
type worker struct {
	build  BuildFunc
	status *buildStatus

	requests chan struct{}

	mu    sync.Mutex
	force bool
}

func newWorker(build BuildFunc, status *buildStatus) *worker {
	return &worker{build: build, status: status, requests: make(chan struct{}, 1)}
}

// Request asks for a build without blocking.
func (w *worker) Request(force bool) {
	w.mu.Lock()
	w.force = w.force || force
	w.mu.Unlock()
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Run processes requests until ctx is done.
func (w *worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			w.mu.Lock()
			force := w.force
			w.force = false
			w.mu.Unlock()
			w.runOnce(ctx, force)
		}
	}
}

func (w *worker) runOnce(ctx context.Context, force bool) {
	start := time.Now()
	slog.Info("Rebuilding site", slog.Bool("force", force))
	err := w.build(ctx, force)
	w.status.record(err)
	if err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
