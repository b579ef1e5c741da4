// Package markdown renders page bodies to HTML and provides source-level
// helpers (link scanning, byte-range edits) for text processors.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/courseforge/internal/foundation/normalization"
)

// Kind selects a rendering strategy for a page.
type Kind int

const (
	KindStandard Kind = iota
	KindSlide
)

func (k Kind) String() string {
	switch k {
	case KindSlide:
		return "slide"
	default:
		return "standard"
	}
}

var kinds = normalization.New(map[string]Kind{
	"standard": KindStandard,
	"page":     KindStandard,
	"slide":    KindSlide,
}, KindStandard)

// ParseKind maps a front matter type value to a Kind. Unknown values render
// as standard pages.
func ParseKind(raw string) Kind {
	return kinds.Normalize(raw)
}

// Renderer converts markdown to an HTML fragment. Every renderer supports
// KindStandard; other kinds are optional.
type Renderer interface {
	Render(kind Kind, source string) (string, error)
	Supports(kind Kind) bool
}

// Resolve returns kind when r supports it and KindStandard otherwise.
func Resolve(r Renderer, kind Kind) Kind {
	if kind != KindStandard && !r.Supports(kind) {
		return KindStandard
	}
	return kind
}

// Option configures a GoldmarkRenderer.
type Option func(*GoldmarkRenderer)

// WithoutSlides disables the slide kind; slide pages fall back to standard rendering.
func WithoutSlides() Option {
	return func(r *GoldmarkRenderer) { r.slides = false }
}

// GoldmarkRenderer renders GitHub-flavoured markdown with raw HTML passthrough.
type GoldmarkRenderer struct {
	standard goldmark.Markdown
	slides   bool
}

// NewRenderer returns a renderer supporting both standard and slide kinds.
func NewRenderer(opts ...Option) *GoldmarkRenderer {
	r := &GoldmarkRenderer{standard: newMarkdown(), slides: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supports reports whether kind can be rendered.
func (r *GoldmarkRenderer) Supports(kind Kind) bool {
	switch kind {
	case KindStandard:
		return true
	case KindSlide:
		return r.slides
	default:
		return false
	}
}

// Render converts source using the strategy for kind.
func (r *GoldmarkRenderer) Render(kind Kind, source string) (string, error) {
	var buf bytes.Buffer
	switch Resolve(r, kind) {
	case KindSlide:
		state := &slideState{}
		md := newMarkdown(goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&slideHeadingRenderer{state: state}, 100)),
		))
		if err := md.Convert([]byte(source), &buf); err != nil {
			return "", fmt.Errorf("render slide markdown: %w", err)
		}
		state.finish(&buf)
	default:
		if err := r.standard.Convert([]byte(source), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
	}
	return buf.String(), nil
}

func newMarkdown(extra ...goldmark.Option) goldmark.Markdown {
	opts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	return goldmark.New(append(opts, extra...)...)
}
