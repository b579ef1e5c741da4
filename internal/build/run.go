package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/courseforge/internal/config"
	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/eventstore"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/incremental"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/markdown"
	"git.home.luguber.info/inful/courseforge/internal/metrics"
	"git.home.luguber.info/inful/courseforge/internal/observability"
	"git.home.luguber.info/inful/courseforge/internal/processors"
)

// buildRun is the state of a single Execute call.
type buildRun struct {
	builder *Builder
	root    string
	tree    *content.Tree
	global  config.DirConfig
	post    processors.Chain

	previous incremental.Index
	current  incremental.Index

	history eventstore.Recorder
	report  *Report
}

func (b *Builder) newRun(root string) *buildRun {
	return &buildRun{
		builder:  b,
		root:     root,
		post:     b.postChain(),
		previous: incremental.Index{},
		current:  incremental.Index{},
		history:  b.history,
		report:   &Report{BuildID: eventstore.NewBuildID()},
	}
}

func (r *buildRun) loadChecksums(ctx context.Context) {
	if r.builder.opts.Force {
		return
	}
	ix, err := r.builder.checksums.Load(r.root)
	if err != nil {
		observability.WarnContext(ctx, "Failed to load checksums, rebuilding everything", logfields.Error(err))
		return
	}
	r.previous = ix
}

func (r *buildRun) saveChecksums(ctx context.Context) {
	if err := r.builder.checksums.Save(r.root, r.current); err != nil {
		observability.WarnContext(ctx, "Failed to save checksums", logfields.Error(err))
	}
}

// record appends a history event. The first failure disables history for
// the rest of the run.
func (r *buildRun) record(ctx context.Context, eventType string, data any) {
	e, err := eventstore.NewEvent(r.report.BuildID, eventType, data)
	if err == nil {
		err = r.history.Record(ctx, e)
	}
	if err != nil {
		observability.WarnContext(ctx, "Build history unavailable, continuing without it", logfields.Error(err))
		r.history = eventstore.NoopRecorder{}
	}
}

// visitDir handles a directory node: config, alias skip, contents page,
// recursion and the slide-deck pass.
func (r *buildRun) visitDir(ctx context.Context, dir *content.Node, inherited config.DirConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	traversal := inherited
	if !dir.IsRoot() {
		traversal = config.Traversal(inherited, dir.SourcePath)
	}

	if canonical := dir.AliasTo(); canonical != nil {
		observability.InfoContext(ctx, "Skipping alias", logfields.Path(dir.SourcePath), logfields.AliasOf(canonical.SourcePath))
		r.report.AliasesSkipped++
		r.builder.recorder.IncPageResult("directory", metrics.PageAliasSkipped)
		r.record(ctx, eventstore.TypeAliasSkipped, eventstore.AliasSkippedData{
			Source:    dir.SourcePath,
			Canonical: canonical.SourcePath,
		})
		return nil
	}

	renderCfg := config.Merge(r.global, traversal)
	if !dir.IsRoot() && dir.ContainsMarkdown(false) {
		if err := r.writeContents(ctx, dir, renderCfg); err != nil {
			return err
		}
	}

	for _, child := range dir.Children() {
		if child.IsSlidesDir() {
			continue
		}
		var err error
		if child.IsFile {
			err = r.visitFile(ctx, child, renderCfg)
		} else {
			err = r.visitDir(ctx, child, traversal)
		}
		if err != nil {
			return err
		}
	}

	if slides := dir.SlidesDir(); slides != nil {
		if err := r.copySlideAssets(ctx, slides); err != nil {
			return err
		}
		if len(slides.MarkdownFiles()) > 0 {
			return r.renderSlideDeck(ctx, dir, slides, renderCfg)
		}
	}
	return nil
}

func (r *buildRun) visitFile(ctx context.Context, node *content.Node, renderCfg config.DirConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !node.IsMarkdown() {
		return r.copyFile(node)
	}
	return r.visitMarkdown(ctx, node, renderCfg, false)
}

func (r *buildRun) copyFile(node *content.Node) error {
	b := r.builder
	rel, err := b.writer.CopyFile(node)
	if err != nil {
		return err
	}
	r.report.Copied++
	b.recorder.IncPageResult("file", metrics.PageCopied)
	slog.Debug("Copied file", logfields.Path(node.SourcePath), logfields.Output(rel))
	return nil
}

// copySlideAssets copies the non-markdown files of a slides directory and its
// subdirectories next to the rendered slides.
func (r *buildRun) copySlideAssets(ctx context.Context, dir *content.Node) error {
	for _, c := range dir.Children() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch {
		case c.IsMarkdown():
		case c.IsFile:
			err = r.copyFile(c)
		default:
			err = r.copySlideAssets(ctx, c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// visitMarkdown loads, checks and renders one markdown page. Pages of a
// slide deck always request the slide kind.
func (r *buildRun) visitMarkdown(ctx context.Context, node *content.Node, renderCfg config.DirConfig, deck bool) error {
	b := r.builder
	doc, err := b.docLoader.Load(node.SourcePath)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to load markdown").
			WithContext("path", node.SourcePath).
			Fatal().
			Build()
	}
	node.Metadata = doc.Metadata
	sum := incremental.Checksum(doc.Raw)
	r.current[node.SourcePath] = sum

	if r.previous.Unchanged(node.SourcePath, sum) && b.writer.Exists(b.writer.PagePath(node)) {
		r.report.Skipped++
		b.recorder.IncPageResult("page", metrics.PageSkipped)
		r.record(ctx, eventstore.TypePageSkipped, eventstore.PageData{Source: node.SourcePath})
		observability.InfoContext(ctx, "Skipping unchanged", logfields.Path(node.SourcePath))
		return nil
	}

	want := pageKind(doc)
	if deck {
		want = markdown.KindSlide
	}
	rel, kind, err := r.renderPage(ctx, node, doc, renderCfg, want)
	if err != nil {
		return err
	}
	r.report.Rendered++
	b.recorder.IncPageResult("page", metrics.PageRendered)
	r.record(ctx, eventstore.TypePageRendered, eventstore.PageData{
		Source: node.SourcePath,
		Output: rel,
		Kind:   kind.String(),
	})
	observability.InfoContext(ctx, "Rendered page", logfields.Path(node.SourcePath), logfields.Output(rel))
	return nil
}
