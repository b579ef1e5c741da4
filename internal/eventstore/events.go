package eventstore

import (
	"encoding/json"
	"time"
)

// Event types recorded for a build.
const (
	TypeBuildStarted  = "build.started"
	TypePageRendered  = "page.rendered"
	TypePageSkipped   = "page.skipped"
	TypeAliasSkipped  = "alias.skipped"
	TypeBuildFinished = "build.finished"
	TypeBuildFailed   = "build.failed"
)

// BuildStartedData is the payload of TypeBuildStarted.
type BuildStartedData struct {
	Root        string `json:"root"`
	Output      string `json:"output"`
	TemplateDir string `json:"template_dir,omitempty"`
	Force       bool   `json:"force"`
}

// PageData is the payload of TypePageRendered and TypePageSkipped.
type PageData struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// AliasSkippedData is the payload of TypeAliasSkipped.
type AliasSkippedData struct {
	Source    string `json:"source"`
	Canonical string `json:"canonical"`
}

// BuildFinishedData is the payload of TypeBuildFinished.
type BuildFinishedData struct {
	Rendered       int   `json:"rendered"`
	Skipped        int   `json:"skipped"`
	Copied         int   `json:"copied"`
	AliasesSkipped int   `json:"aliases_skipped"`
	ContentsPages  int   `json:"contents_pages"`
	Slides         int   `json:"slides"`
	Courses        int   `json:"courses"`
	DurationMS     int64 `json:"duration_ms"`
}

// BuildFailedData is the payload of TypeBuildFailed.
type BuildFailedData struct {
	Error      string `json:"error"`
	Category   string `json:"category,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewEvent builds an event of eventType carrying data as its JSON payload.
func NewEvent(buildID, eventType string, data any) (*BaseEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, wrap(ErrMarshalPayloadFailed, err)
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}, nil
}
