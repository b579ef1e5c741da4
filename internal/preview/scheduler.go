package preview

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
)

// scheduleFullRebuild requests a forced build every interval.
func scheduleFullRebuild(interval time.Duration, w *worker) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { w.Request(true) }),
		gocron.WithName("full-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid full rebuild interval").
			WithContext("interval", interval.String()).
			Build()
	}
	s.Start()
	return s, nil
}
