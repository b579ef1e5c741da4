package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves build history events.
type Store interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)
	// GetRange returns events with start <= timestamp <= end in insertion order.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)
	Close() error
}
