package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/eventstore"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
)

// HistoryCmd lists recorded builds, newest first.
type HistoryCmd struct {
	Content string `short:"c" name:"content" required:"" type:"existingdir" help:"Content root directory."`
	Limit   int    `short:"n" default:"10" help:"Maximum number of builds to list."`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	content, err := filepath.Abs(h.Content)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid content directory").Build()
	}
	cacheDir, err := root.Settings.ResolveCacheDir()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "cannot resolve cache directory").Build()
	}
	out := g.out()
	if !eventstore.Exists(cacheDir, content) {
		_, _ = fmt.Fprintln(out, "No builds recorded for", content)
		return nil
	}

	store, err := eventstore.OpenProject(cacheDir, content)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewBuildHistoryProjection(store, h.Limit)
	if err := projection.Rebuild(context.Background()); err != nil {
		return err
	}
	builds := projection.GetHistory()
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(out, "No builds recorded for", content)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tSTATUS\tDURATION\tRENDERED\tSKIPPED\tCOURSES\tERROR")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(b.BuildID),
			b.StartedAt.Local().Format(time.DateTime),
			b.Status,
			b.Duration.Round(time.Millisecond),
			b.Rendered,
			b.Skipped,
			b.Courses,
			b.ErrorMessage,
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
