package processors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goccy/go-graphviz"

	"git.home.luguber.info/inful/courseforge/internal/content"
)

var (
	graphvizBlock = diagramPattern("graphviz.plot")
	svgElement    = regexp.MustCompile(`(?s)<svg\b.*</svg>`)
	svgOpenTag    = regexp.MustCompile(`^<svg\b[^>]*>`)
	svgSizeAttr   = regexp.MustCompile(`\s(width|height)="[^"]*"`)
	dotHeader     = regexp.MustCompile(`(?i)^\s*(strict\s+)?(di)?graph\b`)
)

// Graphviz renders ```graphviz.plot DOT blocks to inline SVG. With the
// `external` option the SVG is staged as a node attachment and referenced by
// an <img>. Render failures are replaced by an inline error block.
type Graphviz struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

// NewGraphviz returns a Graphviz processor. The layout engine is initialised
// on first use.
func NewGraphviz() *Graphviz { return &Graphviz{} }

func (g *Graphviz) Name() string { return "graphviz" }

func (g *Graphviz) Process(ctx context.Context, node *content.Node, text string) (string, error) {
	blocks := findDiagramBlocks(graphvizBlock, text)
	if len(blocks) == 0 {
		return text, nil
	}
	// Attachments must be staged in document order so indices follow the page.
	rendered := make([]string, len(blocks))
	for i, b := range blocks {
		rendered[i] = g.renderBlock(ctx, node, b)
	}
	return replaceBlocks(text, blocks, func(i int, _ diagramBlock) string {
		return rendered[i]
	}), nil
}

func (g *Graphviz) renderBlock(ctx context.Context, node *content.Node, b diagramBlock) string {
	svg, err := g.RenderSVG(ctx, b.Source)
	if err != nil {
		return errorBlock("Graphviz", err)
	}
	svg = styleSVG(svg, b.Attrs, "svg-graph graphviz-img")

	if b.Attrs.External && node != nil {
		name := fmt.Sprintf("%s_%d.svg", node.Slug(), len(node.Attachments()))
		node.Attach(name, []byte(svg))
		return wrapFigure(fmt.Sprintf(`<img class="svg-graph graphviz-img" src="static/%s" alt="">`, name), b.Attrs)
	}
	return wrapFigure(svg, b.Attrs)
}

// RenderSVG lays out DOT source and returns the bare <svg> element. Source
// without a graph header is wrapped in a digraph.
func (g *Graphviz) RenderSVG(ctx context.Context, dot string) (string, error) {
	if !dotHeader.MatchString(dot) {
		dot = "digraph {\n" + dot + "\n}"
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gv == nil {
		gv, err := graphviz.New(ctx)
		if err != nil {
			return "", fmt.Errorf("init graphviz: %w", err)
		}
		g.gv = gv
	}

	graph, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return "", fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := g.gv.Render(ctx, graph, graphviz.SVG, &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	svg := svgElement.FindString(buf.String())
	if svg == "" {
		return "", errors.New("no <svg> element in graphviz output")
	}
	return svg, nil
}

// Close releases the layout engine.
func (g *Graphviz) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gv == nil {
		return nil
	}
	err := g.gv.Close()
	g.gv = nil
	return err
}

// styleSVG sets the class and size of the root <svg> element and flattens it
// onto one line so markdown does not treat indented lines as code.
func styleSVG(svg string, attrs blockAttrs, class string) string {
	open := svgOpenTag.FindString(svg)
	if open == "" {
		return svg
	}
	tag := svgSizeAttr.ReplaceAllString(open, "")
	tag = strings.TrimSuffix(tag, ">")
	tag += fmt.Sprintf(` class="%s"`, class)
	if attrs.Width != "" {
		tag += fmt.Sprintf(` width="%s"`, attrs.Width)
	}
	if attrs.Height != "" {
		tag += fmt.Sprintf(` height="%s"`, attrs.Height)
	}
	if attrs.Sketch {
		tag += ` data-sketch="true"`
	}
	svg = tag + ">" + svg[len(open):]
	return strings.NewReplacer("\r", "", "\n", "").Replace(svg)
}

func wrapFigure(inner string, attrs blockAttrs) string {
	wrapper := ""
	if attrs.Centered {
		wrapper = "centered"
	}
	return fmt.Sprintf(`<div class="no-break"><div class="%s">%s</div></div>`, wrapper, inner)
}
