package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyNode       = "node"
	KeyCourse     = "course"
	KeyAlias      = "alias_of"
	KeyProcessor  = "processor"
	KeyOutput     = "output"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func File(f string) slog.Attr           { return slog.String(KeyFile, f) }
func Node(name string) slog.Attr        { return slog.String(KeyNode, name) }
func Course(name string) slog.Attr      { return slog.String(KeyCourse, name) }
func AliasOf(path string) slog.Attr     { return slog.String(KeyAlias, path) }
func Processor(name string) slog.Attr   { return slog.String(KeyProcessor, name) }
func Output(path string) slog.Attr      { return slog.String(KeyOutput, path) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	if v, ok := err.(slog.LogValuer); ok {
		return slog.Any(KeyError, v)
	}
	return slog.String(KeyError, err.Error())
}
