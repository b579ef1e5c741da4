package processors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/courseforge/internal/content"
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
)

func TestChain_AppliesInOrderWithNode(t *testing.T) {
	node := content.NewFile("/c/page.md")
	var seen []*content.Node
	chain := Chain{
		Func{ID: "a", Fn: func(_ context.Context, n *content.Node, s string) (string, error) {
			seen = append(seen, n)
			return s + "a", nil
		}},
		Func{ID: "b", Fn: func(_ context.Context, n *content.Node, s string) (string, error) {
			seen = append(seen, n)
			return s + "b", nil
		}},
	}

	out, err := chain.Run(context.Background(), node, "x")
	require.NoError(t, err)
	require.Equal(t, "xab", out)
	require.Equal(t, []*content.Node{node, node}, seen)
	require.Equal(t, []string{"a", "b"}, chain.Names())
}

func TestChain_ErrorIsClassifiedAndStops(t *testing.T) {
	boom := errors.New("boom")
	called := false
	chain := Chain{
		Func{ID: "fail", Fn: func(context.Context, *content.Node, string) (string, error) { return "", boom }},
		Func{ID: "never", Fn: func(_ context.Context, _ *content.Node, s string) (string, error) {
			called = true
			return s, nil
		}},
	}
	_, err := chain.Run(context.Background(), content.NewFile("/c/p.md"), "x")
	require.ErrorIs(t, err, boom)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	require.False(t, called)
}

func TestChain_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Chain{DownloadLinkMarker{}}.Run(ctx, content.NewFile("/c/p.md"), "x")
	require.ErrorIs(t, err, context.Canceled)
}
