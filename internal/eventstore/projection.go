// Package eventstore records build history in SQLite and projects it into
// per-build summaries.
package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Build statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BuildSummary is the read model of one build.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	Root         string        `json:"root,omitempty"`
	Status       string        `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Force        bool          `json:"force,omitempty"`
	Rendered     int           `json:"rendered"`
	Skipped      int           `json:"skipped"`
	Aliases      int           `json:"aliases"`
	Copied       int           `json:"copied"`
	Courses      int           `json:"courses"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// BuildHistoryProjection maintains an in-memory view of build history,
// reconstructed from the events in a store.
type BuildHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	builds   map[string]*BuildSummary
	history  []*BuildSummary // finished builds, newest first
	maxSize  int
	lastSync time.Time
}

// NewBuildHistoryProjection creates a projection backed by store.
func NewBuildHistoryProjection(store Store, maxHistorySize int) *BuildHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &BuildHistoryProjection{
		store:   store,
		builds:  make(map[string]*BuildSummary),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all stored events.
func (p *BuildHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.builds = make(map[string]*BuildSummary)
	p.history = nil
	for _, event := range events {
		p.applyLocked(event)
	}
	sort.SliceStable(p.history, func(i, j int) bool {
		return p.history[i].StartedAt.After(p.history[j].StartedAt)
	})
	p.trimLocked()
	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event.
func (p *BuildHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(event)
	p.trimLocked()
}

func (p *BuildHistoryProjection) applyLocked(event Event) {
	buildID := event.BuildID()
	if buildID == "" {
		return
	}
	summary, ok := p.builds[buildID]
	if !ok {
		summary = &BuildSummary{BuildID: buildID, Status: StatusRunning, StartedAt: event.Timestamp()}
		p.builds[buildID] = summary
	}

	switch event.Type() {
	case TypeBuildStarted:
		summary.StartedAt = event.Timestamp()
		var d BuildStartedData
		if Decode(event, &d) == nil {
			summary.Root = d.Root
			summary.Force = d.Force
		}

	case TypePageRendered:
		summary.Rendered++

	case TypePageSkipped:
		summary.Skipped++

	case TypeAliasSkipped:
		summary.Aliases++

	case TypeBuildFinished:
		p.finishLocked(summary, event.Timestamp(), StatusCompleted)
		var d BuildFinishedData
		if Decode(event, &d) == nil {
			summary.Rendered = d.Rendered
			summary.Skipped = d.Skipped
			summary.Aliases = d.AliasesSkipped
			summary.Copied = d.Copied
			summary.Courses = d.Courses
		}

	case TypeBuildFailed:
		p.finishLocked(summary, event.Timestamp(), StatusFailed)
		var d BuildFailedData
		if Decode(event, &d) == nil {
			summary.ErrorMessage = d.Error
		}
	}
}

func (p *BuildHistoryProjection) finishLocked(summary *BuildSummary, at time.Time, status string) {
	summary.CompletedAt = &at
	summary.Duration = at.Sub(summary.StartedAt)
	summary.Status = status
	for _, h := range p.history {
		if h.BuildID == summary.BuildID {
			return
		}
	}
	p.history = append([]*BuildSummary{summary}, p.history...)
}

// trimLocked bounds history and drops finished builds that fell out of it.
func (p *BuildHistoryProjection) trimLocked() {
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.BuildID] = struct{}{}
	}
	for id, s := range p.builds {
		if s.Status == StatusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.builds, id)
		}
	}
}

// GetHistory returns finished builds, newest first.
func (p *BuildHistoryProjection) GetHistory() []BuildSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]BuildSummary, 0, len(p.history))
	for _, h := range p.history {
		out = append(out, *h)
	}
	return out
}

// GetBuild returns a copy of one build's summary.
func (p *BuildHistoryProjection) GetBuild(buildID string) (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.builds[buildID]
	if !ok {
		return BuildSummary{}, false
	}
	return *s, true
}

// GetLastCompletedBuild returns the most recently finished build.
func (p *BuildHistoryProjection) GetLastCompletedBuild() (BuildSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.history) == 0 {
		return BuildSummary{}, false
	}
	return *p.history[0], true
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *BuildHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
