package processors

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/courseforge/internal/content"
)

var mermaidBlock = diagramPattern("mermaid.plot")

// Mermaid replaces ```mermaid.plot blocks with a placeholder carrying the
// base64 diagram source; the page script renders it client-side.
type Mermaid struct{}

func (Mermaid) Name() string { return "mermaid" }

func (Mermaid) Process(_ context.Context, _ *content.Node, text string) (string, error) {
	blocks := findDiagramBlocks(mermaidBlock, text)
	if len(blocks) == 0 {
		return text, nil
	}
	return replaceBlocks(text, blocks, renderMermaid), nil
}

func renderMermaid(_ int, b diagramBlock) string {
	var style []string
	if b.Attrs.Width != "" {
		style = append(style, "max-width: "+b.Attrs.Width+"px")
	}
	if b.Attrs.Height != "" {
		style = append(style, "height: "+b.Attrs.Height+"px")
	}
	styleAttr := ""
	if len(style) > 0 {
		styleAttr = fmt.Sprintf(` style="%s"`, strings.Join(style, "; "))
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(b.Source))
	out := fmt.Sprintf(`<pre class="mermaid-hidden" data-source="%s"%s>Loading diagram...</pre>`, encoded, styleAttr)
	if b.Attrs.Sketch {
		out = "<div class=\"mermaid-sketch-container\" data-sketch=\"true\">\n" + out + "\n</div>"
	}
	return out
}
