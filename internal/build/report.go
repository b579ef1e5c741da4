package build

import (
	"time"

	"git.home.luguber.info/inful/courseforge/internal/eventstore"
)

// Report summarises one build.
type Report struct {
	BuildID        string
	Rendered       int
	Skipped        int
	Copied         int
	AliasesSkipped int
	ContentsPages  int
	Slides         int
	Courses        int
	Duration       time.Duration
}

func (r *Report) finishedData() eventstore.BuildFinishedData {
	return eventstore.BuildFinishedData{
		Rendered:       r.Rendered,
		Skipped:        r.Skipped,
		Copied:         r.Copied,
		AliasesSkipped: r.AliasesSkipped,
		ContentsPages:  r.ContentsPages,
		Slides:         r.Slides,
		Courses:        r.Courses,
		DurationMS:     r.Duration.Milliseconds(),
	}
}
