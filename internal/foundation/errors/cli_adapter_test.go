package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "content", err: ContentError("invalid source redirect").Build(), expected: 7},
		{name: "build", err: BuildError("processor failed").Build(), expected: 11},
		{name: "render", err: RenderError("template failed").Build(), expected: 11},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "unclassified", err: stderrors.New("plain"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)
	err := WrapError(stderrors.New("disk full"), CategoryFileSystem, "write page failed").Build()

	require.Equal(t, "Error: write page failed (use -v for details)", quiet.FormatError(err))
	require.Contains(t, verbose.FormatError(err), "disk full")
	require.Equal(t, "Error: plain", quiet.FormatError(stderrors.New("plain")))
	require.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))

	code := adapter.Report(&out, ConfigError("invalid source redirect").WithContext("dir", "/tmp/x").Build())

	require.Equal(t, 7, code)
	require.Contains(t, out.String(), "invalid source redirect")
	require.Contains(t, logs.String(), "category=config")
	require.Contains(t, logs.String(), "dir=/tmp/x")
}
