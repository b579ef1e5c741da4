package processors

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// blockAttrs are the options accepted after a diagram fence's info string,
// e.g. "```graphviz.plot width=400 centered".
type blockAttrs struct {
	Width    string
	Height   string
	Centered bool
	Sketch   bool
	External bool
}

type diagramBlock struct {
	Start, End int
	Indent     string
	Attrs      blockAttrs
	Source     string
}

// diagramPattern matches a fenced block whose info string is blockType.
func diagramPattern(blockType string) *regexp.Regexp {
	return regexp.MustCompile("(?s)(?m:^)([ \\t]*)```" + regexp.QuoteMeta(blockType) + `([^\n]*)\n(.*?)` + "```")
}

func findDiagramBlocks(re *regexp.Regexp, text string) []diagramBlock {
	var blocks []diagramBlock
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		blocks = append(blocks, diagramBlock{
			Start:  m[0],
			End:    m[1],
			Indent: text[m[2]:m[3]],
			Attrs:  parseBlockAttrs(text[m[4]:m[5]]),
			Source: strings.TrimSpace(text[m[6]:m[7]]),
		})
	}
	return blocks
}

func parseBlockAttrs(info string) blockAttrs {
	var a blockAttrs
	for _, field := range strings.Fields(info) {
		key, val, _ := strings.Cut(field, "=")
		switch key {
		case "width":
			a.Width = digitsOnly(val)
		case "height":
			a.Height = digitsOnly(val)
		case "centered":
			a.Centered = true
		case "sketch":
			a.Sketch = true
		case "external":
			a.External = true
		}
	}
	return a
}

func digitsOnly(s string) string {
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}

// errorBlock is the inline marker substituted for a diagram that failed to render.
func errorBlock(kind string, err error) string {
	return fmt.Sprintf(`<div class="error">%s error: %s</div>`, kind, html.EscapeString(err.Error()))
}

// replaceBlocks substitutes every block with render's output, back to front.
func replaceBlocks(text string, blocks []diagramBlock, render func(i int, b diagramBlock) string) string {
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		text = text[:b.Start] + b.Indent + render(i, b) + text[b.End:]
	}
	return text
}
