package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/build"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SiteFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	report, err := RunBuild(ctx, b.SiteFlags, root)
	if err != nil {
		return err
	}
	printReport(g.out(), report)
	return nil
}

// RunBuild performs a single build with the given flags.
func RunBuild(ctx context.Context, flags SiteFlags, root *CLI) (*build.Report, error) {
	rt, err := openSite(flags, root.Settings)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	b := rt.builder(false, nil)
	defer func() { _ = b.Close() }()
	report, err := b.Execute(ctx, rt.flags.Content)
	rt.pruneHistory(context.WithoutCancel(ctx))
	return report, err
}

func printReport(w io.Writer, r *build.Report) {
	_, _ = fmt.Fprintf(w, "Built %d pages (%d unchanged, %d files copied, %d aliases skipped) for %d courses in %s\n",
		r.Rendered, r.Skipped, r.Copied, r.AliasesSkipped, r.Courses, r.Duration.Round(time.Millisecond))
}
