package build

import (
	"git.home.luguber.info/inful/courseforge/internal/content"
	"git.home.luguber.info/inful/courseforge/internal/eventstore"
	"git.home.luguber.info/inful/courseforge/internal/frontmatter"
	"git.home.luguber.info/inful/courseforge/internal/gitinfo"
	"git.home.luguber.info/inful/courseforge/internal/incremental"
	"git.home.luguber.info/inful/courseforge/internal/markdown"
	"git.home.luguber.info/inful/courseforge/internal/metrics"
	"git.home.luguber.info/inful/courseforge/internal/output"
	"git.home.luguber.info/inful/courseforge/internal/processors"
	"git.home.luguber.info/inful/courseforge/internal/templates"
)

// Options are the user-facing build settings.
type Options struct {
	// OutputDir receives the generated site.
	OutputDir string
	// TemplateDir overrides the embedded templates and provides static assets.
	TemplateDir string
	// CacheDir holds checksum files when no checksum store is injected.
	CacheDir string
	// Force renders every page regardless of stored checksums.
	Force bool
	// Minify minifies every written HTML page.
	Minify bool
}

// Option injects a collaborator into a Builder.
type Option func(*Builder)

func WithTreeLoader(l content.TreeLoader) Option {
	return func(b *Builder) { b.treeLoader = l }
}

func WithDocumentLoader(l frontmatter.Loader) Option {
	return func(b *Builder) { b.docLoader = l }
}

func WithMarkdownRenderer(r markdown.Renderer) Option {
	return func(b *Builder) { b.markdown = r }
}

func WithTemplateRenderer(r templates.Renderer) Option {
	return func(b *Builder) { b.templates = r }
}

func WithWriter(w output.Writer) Option {
	return func(b *Builder) { b.writer = w }
}

func WithChecksumStore(s incremental.Store) Option {
	return func(b *Builder) { b.checksums = s }
}

// WithRecorder enables build metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithHistory records build events.
func WithHistory(r eventstore.Recorder) Option {
	return func(b *Builder) { b.history = r }
}

// WithDateResolver supplies page dates for pages without a front matter date.
func WithDateResolver(r gitinfo.DateResolver) Option {
	return func(b *Builder) { b.dates = r }
}

// WithPreProcessors replaces the default markdown processor chain. The chain
// is shared by every build, so its processors must tolerate reuse.
func WithPreProcessors(c processors.Chain) Option {
	return func(b *Builder) { b.pre = c }
}

// WithPostProcessors replaces the default page processor chain.
func WithPostProcessors(c processors.Chain) Option {
	return func(b *Builder) { b.post = c }
}
