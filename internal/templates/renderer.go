// Package templates renders HTML fragments into full pages with html/template.
// Built-in layouts are embedded; a template directory may override any of them
// by file name.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/courseforge/internal/markdown"
)

// Template file names.
const (
	BaseTemplate     = "base.html"
	SlideTemplate    = "slide.html"
	ContentsTemplate = "contents.html"
	IndexTemplate    = "index.html"
	SlidesTemplate   = "slides.html"
)

//go:embed defaults/*.html
var defaults embed.FS

// Renderer wraps page fragments in layouts.
type Renderer interface {
	RenderPage(kind markdown.Kind, data PageData) (string, error)
	RenderContents(data ContentsData) (string, error)
	RenderIndex(data IndexData) (string, error)
	RenderSlidesIndex(data SlidesIndexData) (string, error)
	Supports(kind markdown.Kind) bool
}

// HTMLRenderer loads templates from an optional directory, falling back to
// the embedded defaults. Parsed templates are cached.
type HTMLRenderer struct {
	dir      string
	noSlides bool

	mu    sync.Mutex
	cache map[string]*template.Template
}

// Option configures an HTMLRenderer.
type Option func(*HTMLRenderer)

// WithTemplateDir overrides embedded templates with files from dir.
func WithTemplateDir(dir string) Option {
	return func(r *HTMLRenderer) { r.dir = dir }
}

// WithoutSlideLayout disables the slide layout so slide pages use base.html.
func WithoutSlideLayout() Option {
	return func(r *HTMLRenderer) { r.noSlides = true }
}

// NewRenderer returns a template renderer.
func NewRenderer(opts ...Option) *HTMLRenderer {
	r := &HTMLRenderer{cache: make(map[string]*template.Template)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the configured template directory, or "".
func (r *HTMLRenderer) Dir() string { return r.dir }

// Supports reports whether a layout exists for kind.
func (r *HTMLRenderer) Supports(kind markdown.Kind) bool {
	switch kind {
	case markdown.KindStandard:
		return true
	case markdown.KindSlide:
		return !r.noSlides
	default:
		return false
	}
}

// RenderPage renders a content page with the layout for kind, falling back
// to the standard layout.
func (r *HTMLRenderer) RenderPage(kind markdown.Kind, data PageData) (string, error) {
	name := BaseTemplate
	if !r.Supports(kind) {
		kind = markdown.KindStandard
	}
	if kind == markdown.KindSlide {
		name = SlideTemplate
	}
	if data.Kind == "" {
		data.Kind = kind.String()
	}
	return r.execute(name, data)
}

func (r *HTMLRenderer) RenderContents(data ContentsData) (string, error) {
	return r.execute(ContentsTemplate, data)
}

func (r *HTMLRenderer) RenderIndex(data IndexData) (string, error) {
	return r.execute(IndexTemplate, data)
}

func (r *HTMLRenderer) RenderSlidesIndex(data SlidesIndexData) (string, error) {
	return r.execute(SlidesTemplate, data)
}

func (r *HTMLRenderer) execute(name string, data any) (string, error) {
	tpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (r *HTMLRenderer) lookup(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[name]; ok {
		return tpl, nil
	}
	src, err := r.source(name)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(name).Funcs(funcMap()).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	r.cache[name] = tpl
	return tpl, nil
}

func (r *HTMLRenderer) source(name string) ([]byte, error) {
	if r.dir != "" {
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
	}
	data, err := defaults.ReadFile("defaults/" + name)
	if err != nil {
		return nil, fmt.Errorf("no template named %s: %w", name, err)
	}
	return data, nil
}

func funcMap() template.FuncMap {
	title := cases.Title(language.BrazilianPortuguese)
	return template.FuncMap{
		"roman": Roman,
		"title": title.String,
		"cfg": func(m map[string]any, key string) string {
			v, ok := m[key]
			if !ok || v == nil {
				return ""
			}
			return strings.TrimSpace(fmt.Sprint(v))
		},
		"year": func() int { return time.Now().Year() },
	}
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman formats n as a Roman numeral. Non-positive numbers yield "".
func Roman(n int) string {
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
