// Package processors holds the text transformations applied to a page before
// markdown rendering (pre) and to the rendered page afterwards (post).
package processors

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/courseforge/internal/content"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
)

// Processor transforms page text. node is the page being built; processors
// may stage attachments on it.
type Processor interface {
	Name() string
	Process(ctx context.Context, node *content.Node, text string) (string, error)
}

// Chain applies processors in order.
type Chain []Processor

// Run feeds text through every processor. The first failure aborts the chain.
func (c Chain) Run(ctx context.Context, node *content.Node, text string) (string, error) {
	for _, p := range c {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := p.Process(ctx, node, text)
		if err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryBuild, "processor failed").
				WithContext("processor", p.Name()).
				WithContext("path", node.SourcePath).
				Fatal().
				Build()
		}
		slog.Debug("Processor applied", logfields.Processor(p.Name()), logfields.Path(node.SourcePath))
		text = out
	}
	return text, nil
}

// Names lists processor names in order.
func (c Chain) Names() []string {
	out := make([]string, 0, len(c))
	for _, p := range c {
		out = append(out, p.Name())
	}
	return out
}

// Func adapts a function to Processor.
type Func struct {
	ID string
	Fn func(ctx context.Context, node *content.Node, text string) (string, error)
}

func (f Func) Name() string { return f.ID }

func (f Func) Process(ctx context.Context, node *content.Node, text string) (string, error) {
	return f.Fn(ctx, node, text)
}
