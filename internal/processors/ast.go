package processors

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"git.home.luguber.info/inful/courseforge/internal/content"
)

var astBlock = diagramPattern("ast.plot")

var (
	errEmptyExpression = errors.New("empty expression")
	errMissingOperator = errors.New("missing operator after (")
	errUnbalanced      = errors.New("unbalanced )")
)

var dotQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// AST draws ```ast.plot s-expressions such as `(+ 1 (* 2 x))` as syntax
// trees. Each list becomes an operator node with edges to its operands. The
// SVG is always staged as a node attachment.
type AST struct {
	engine *Graphviz
}

// NewAST returns an AST processor laying out trees with engine.
func NewAST(engine *Graphviz) AST { return AST{engine: engine} }

func (AST) Name() string { return "ast" }

func (a AST) Process(ctx context.Context, node *content.Node, text string) (string, error) {
	blocks := findDiagramBlocks(astBlock, text)
	if len(blocks) == 0 {
		return text, nil
	}
	rendered := make([]string, len(blocks))
	for i, b := range blocks {
		rendered[i] = a.renderBlock(ctx, node, b)
	}
	return replaceBlocks(text, blocks, func(i int, _ diagramBlock) string {
		return rendered[i]
	}), nil
}

func (a AST) renderBlock(ctx context.Context, node *content.Node, b diagramBlock) string {
	dot, err := astDOT(b.Source)
	if err != nil {
		return errorBlock("AST", err)
	}
	svg, err := a.engine.RenderSVG(ctx, dot)
	if err != nil {
		return errorBlock("AST", err)
	}
	svg = styleSVG(svg, blockAttrs{}, "ast-plot")

	wrapper := ""
	if b.Attrs.Centered {
		wrapper = "centered"
	}
	if node == nil {
		return fmt.Sprintf(`<div class="%s">%s</div>`, wrapper, svg)
	}
	name := fmt.Sprintf("%s_%d.svg", node.Slug(), len(node.Attachments()))
	node.Attach(name, []byte(svg))

	img := fmt.Sprintf(`<img src="static/%s"`, name)
	if b.Attrs.Width != "" {
		img += fmt.Sprintf(` width="%s"`, b.Attrs.Width)
	}
	if b.Attrs.Height != "" {
		img += fmt.Sprintf(` height="%s"`, b.Attrs.Height)
	}
	img += ` class="ast-plot-img" />`
	return fmt.Sprintf(`<div class="%s">%s</div>`, wrapper, img)
}

// astDOT converts an s-expression into a DOT digraph. Missing closing
// parentheses at the end of the input are tolerated.
func astDOT(expr string) (string, error) {
	tokens := strings.Fields(strings.NewReplacer("(", " ( ", ")", " ) ").Replace(expr))
	if len(tokens) == 0 {
		return "", errEmptyExpression
	}
	w := &astWriter{tokens: tokens}
	w.b.WriteString("digraph G {\n")
	w.b.WriteString("\tgraph [bgcolor=\"transparent\", color=\"transparent\"];\n")
	w.b.WriteString("\tnode [shape=plaintext, fontsize=14, fontname=\"sans-serif\"];\n")
	w.b.WriteString("\tedge [penwidth=2, arrowsize=0.8, class=\"ast-edge\"];\n")
	for w.pos < len(w.tokens) {
		if _, err := w.expr(); err != nil {
			return "", err
		}
	}
	w.b.WriteString("}\n")
	return w.b.String(), nil
}

type astWriter struct {
	tokens []string
	pos    int
	nodes  int
	b      strings.Builder
}

func (w *astWriter) next() string {
	t := w.tokens[w.pos]
	w.pos++
	return t
}

func (w *astWriter) id() string {
	id := fmt.Sprintf("n%d", w.nodes)
	w.nodes++
	return id
}

// expr writes the expression at the cursor and returns its node id.
func (w *astWriter) expr() (string, error) {
	tok := w.next()
	switch tok {
	case ")":
		return "", errUnbalanced
	case "(":
	default:
		id := w.id()
		fmt.Fprintf(&w.b, "\t%s [label=\"%s\", class=\"ast-leaf\"];\n", id, dotQuote.Replace(tok))
		return id, nil
	}

	if w.pos >= len(w.tokens) || w.tokens[w.pos] == "(" || w.tokens[w.pos] == ")" {
		return "", errMissingOperator
	}
	id := w.id()
	fmt.Fprintf(&w.b, "\t%s [shape=plain, class=\"ast-op\", label=<%s>];\n", id, opLabel(w.next()))
	for w.pos < len(w.tokens) && w.tokens[w.pos] != ")" {
		child, err := w.expr()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&w.b, "\t%s -> %s;\n", id, child)
	}
	if w.pos < len(w.tokens) {
		w.pos++
	}
	return id, nil
}

// opLabel is the HTML-like label of an operator: a boxed name over a thick rule.
func opLabel(op string) string {
	return `<TABLE BORDER="0" CELLBORDER="0" CELLSPACING="0" CELLPADDING="0">` +
		`<TR><TD BORDER="1" SIDES="LRT" CELLPADDING="10">` + html.EscapeString(op) + `</TD></TR>` +
		`<TR><TD BORDER="1" SIDES="LRB" BGCOLOR="black" HEIGHT="4"></TD></TR>` +
		`</TABLE>`
}
