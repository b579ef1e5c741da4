package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// slideState tracks whether a `.slide` section is open during one render.
type slideState struct {
	inSlide bool
}

func (s *slideState) finish(buf *bytes.Buffer) {
	if s.inSlide {
		buf.WriteString("</div>\n")
		s.inSlide = false
	}
}

// slideHeadingRenderer turns level-1 headings into cover slides and level-2
// headings into slide sections. Deeper headings render normally.
type slideHeadingRenderer struct {
	state *slideState
}

func (r *slideHeadingRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
}

func (r *slideHeadingRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	switch n.Level {
	case 1:
		if entering {
			if r.state.inSlide {
				_, _ = w.WriteString("</div>\n")
				r.state.inSlide = false
			}
			_, _ = w.WriteString(`<div class="cover-slide"><h1 class="cover-title"`)
			renderHeadingAttributes(w, node)
			_ = w.WriteByte('>')
		} else {
			_, _ = w.WriteString("</h1></div>\n")
		}
	case 2:
		if entering {
			if r.state.inSlide {
				_, _ = w.WriteString("</div>\n")
			}
			r.state.inSlide = true
			_, _ = w.WriteString(`<div class="slide"><h2 class="slide-title"`)
			renderHeadingAttributes(w, node)
			_ = w.WriteByte('>')
		} else {
			_, _ = w.WriteString("</h2>\n")
		}
	default:
		if entering {
			_, _ = w.WriteString("<h")
			_ = w.WriteByte("0123456"[n.Level])
			renderHeadingAttributes(w, node)
			_ = w.WriteByte('>')
		} else {
			_, _ = w.WriteString("</h")
			_ = w.WriteByte("0123456"[n.Level])
			_, _ = w.WriteString(">\n")
		}
	}
	return ast.WalkContinue, nil
}

func renderHeadingAttributes(w util.BufWriter, node ast.Node) {
	if node.Attributes() != nil {
		html.RenderAttributes(w, node, html.HeadingAttributeFilter)
	}
}
