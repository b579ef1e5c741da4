package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/assets"
	"git.home.luguber.info/inful/courseforge/internal/config"
	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/eventstore"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/frontmatter"
	"git.home.luguber.info/inful/courseforge/internal/gitinfo"
	"git.home.luguber.info/inful/courseforge/internal/incremental"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/markdown"
	"git.home.luguber.info/inful/courseforge/internal/metrics"
	"git.home.luguber.info/inful/courseforge/internal/observability"
	"git.home.luguber.info/inful/courseforge/internal/output"
	"git.home.luguber.info/inful/courseforge/internal/processors"
	"git.home.luguber.info/inful/courseforge/internal/templates"
)

// Stage names used for metrics and log context.
const (
	StageLoad     = "load"
	StageTraverse = "traverse"
	StageIndex    = "index"
	StageAssets   = "assets"
)

// Builder runs site builds. Execute is not safe for concurrent use.
type Builder struct {
	opts Options

	treeLoader content.TreeLoader
	docLoader  frontmatter.Loader
	markdown   markdown.Renderer
	templates  templates.Renderer
	writer     output.Writer
	checksums  incremental.Store
	recorder   metrics.Recorder
	history    eventstore.Recorder
	dates      gitinfo.DateResolver
	pre        processors.Chain
	post       processors.Chain

	minifier *assets.Minifier
	graphviz *processors.Graphviz
}

// New returns a Builder with filesystem-backed defaults for every
// collaborator not supplied through opts.
func New(o Options, opts ...Option) *Builder {
	b := &Builder{
		opts:     o,
		recorder: metrics.NoopRecorder{},
		history:  eventstore.NoopRecorder{},
		dates:    gitinfo.NoopResolver{},
		minifier: assets.NewMinifier(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.treeLoader == nil {
		b.treeLoader = content.NewLoader()
	}
	if b.docLoader == nil {
		b.docLoader = frontmatter.NewFileLoader()
	}
	if b.markdown == nil {
		b.markdown = markdown.NewRenderer()
	}
	if b.templates == nil {
		var topts []templates.Option
		if o.TemplateDir != "" {
			topts = append(topts, templates.WithTemplateDir(o.TemplateDir))
		}
		b.templates = templates.NewRenderer(topts...)
	}
	if b.writer == nil {
		b.writer = output.NewFSWriter(o.OutputDir, b.minifier)
	}
	if b.checksums == nil {
		if o.CacheDir != "" {
			b.checksums = incremental.NewFileStore(o.CacheDir)
		} else {
			b.checksums = incremental.NewMemoryStore()
		}
	}
	if b.pre == nil {
		b.graphviz = processors.NewGraphviz()
		b.pre = processors.Chain{
			processors.DownloadLinkMarker{},
			processors.InternalLinks{},
			processors.Mermaid{},
			b.graphviz,
			processors.NewAST(b.graphviz),
		}
	}
	return b
}

// Close releases the diagram engine.
func (b *Builder) Close() error {
	if b.graphviz != nil {
		return b.graphviz.Close()
	}
	return nil
}

// postChain returns the page processors for one build. The asset bundler
// writes its bundles once per instance, so a fresh chain is built per run.
func (b *Builder) postChain() processors.Chain {
	if b.post != nil {
		return b.post
	}
	chain := processors.Chain{processors.DownloadLinks{}}
	if b.opts.TemplateDir != "" {
		chain = append(chain, processors.NewAssetBundle(b.opts.TemplateDir, b.opts.OutputDir, b.minifier))
	}
	if b.opts.Minify {
		chain = append(chain, processors.NewHTMLMinify(b.minifier))
	}
	return chain
}

// Execute builds the site for the content tree at root.
func (b *Builder) Execute(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "invalid content root").
			WithContext("path", root).
			Build()
	}

	run := b.newRun(absRoot)
	ctx = observability.WithBuildID(ctx, run.report.BuildID)
	run.record(ctx, eventstore.TypeBuildStarted, eventstore.BuildStartedData{
		Root:        absRoot,
		Output:      b.opts.OutputDir,
		TemplateDir: b.opts.TemplateDir,
		Force:       b.opts.Force,
	})
	observability.InfoContext(ctx, "Build started", logfields.Path(absRoot), logfields.Output(b.opts.OutputDir))

	err = run.execute(ctx)

	run.report.Duration = time.Since(start)
	b.recorder.ObserveBuildDuration(run.report.Duration)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeCanceled
		}
		b.recorder.IncBuildOutcome(outcome)
		run.record(context.WithoutCancel(ctx), eventstore.TypeBuildFailed, eventstore.BuildFailedData{
			Error:      err.Error(),
			Category:   string(ferrors.GetCategory(err)),
			DurationMS: run.report.Duration.Milliseconds(),
		})
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
		return run.report, err
	}

	b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	run.record(ctx, eventstore.TypeBuildFinished, run.report.finishedData())
	observability.InfoContext(ctx, "Build finished",
		slog.Int("rendered", run.report.Rendered),
		slog.Int("skipped", run.report.Skipped),
		slog.Int("copied", run.report.Copied),
		slog.Int("courses", run.report.Courses),
		logfields.DurationMS(float64(run.report.Duration.Milliseconds())),
	)
	return run.report, nil
}

func (r *buildRun) execute(ctx context.Context) error {
	b := r.builder
	r.global = config.LoadGlobal(r.root)

	stageStart := time.Now()
	tree, err := b.treeLoader.Load(r.root)
	if err != nil {
		return err
	}
	r.tree = tree
	if groups := content.DetectAliases(tree); len(groups) > 0 {
		observability.InfoContext(ctx, "Detected aliased directories", logfields.Count(len(groups)))
	}
	r.loadChecksums(ctx)
	b.recorder.ObserveStageDuration(StageLoad, time.Since(stageStart))

	stageStart = time.Now()
	if err := r.visitDir(observability.WithStage(ctx, StageTraverse), tree.Root, r.global); err != nil {
		return err
	}
	b.recorder.ObserveStageDuration(StageTraverse, time.Since(stageStart))

	stageStart = time.Now()
	if err := r.writeIndex(observability.WithStage(ctx, StageIndex)); err != nil {
		return err
	}
	b.recorder.ObserveStageDuration(StageIndex, time.Since(stageStart))

	r.saveChecksums(ctx)

	if b.opts.TemplateDir != "" {
		stageStart = time.Now()
		n, err := b.writer.CopyAssets(b.opts.TemplateDir)
		if err != nil {
			return err
		}
		observability.DebugContext(ctx, "Copied template assets", logfields.Count(n))
		b.recorder.ObserveStageDuration(StageAssets, time.Since(stageStart))
	}
	return nil
}
