package metrics

import "time"

// PageResult enumerates what a build did with a source node.
type PageResult string

const (
	PageRendered     PageResult = "rendered"
	PageSkipped      PageResult = "skipped"
	PageCopied       PageResult = "copied"
	PageAliasSkipped PageResult = "alias_skipped"
)

// BuildOutcome is the final status of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds. Implementations may
// forward to Prometheus; NoopRecorder is the default.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncPageResult(kind string, result PageResult)
	IncBuildOutcome(outcome BuildOutcome)
	SetCourses(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncPageResult(string, PageResult)           {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) SetCourses(int)                             {}
