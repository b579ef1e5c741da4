package eventstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/courseforge/internal/incremental"
	"git.home.luguber.info/inful/courseforge/internal/logfields"
	"git.home.luguber.info/inful/courseforge/internal/retry"
)

// Recorder receives build history events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// NoopRecorder discards events.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, Event) error { return nil }

// StoreRecorder appends events to a Store, retrying failed appends such as
// a database locked by a concurrent reader.
type StoreRecorder struct {
	store  Store
	policy retry.Policy
}

// NewStoreRecorder returns a recorder writing to store with the default
// retry policy.
func NewStoreRecorder(store Store) *StoreRecorder {
	return &StoreRecorder{store: store, policy: retry.DefaultPolicy()}
}

// WithRetryPolicy replaces the append retry policy.
func (r *StoreRecorder) WithRetryPolicy(p retry.Policy) *StoreRecorder {
	r.policy = p
	return r
}

func (r *StoreRecorder) Record(ctx context.Context, e Event) error {
	return r.policy.Do(ctx, func() error {
		return r.store.Append(ctx, e.BuildID(), e.Type(), e.Payload(), e.Metadata())
	})
}

// NewBuildID returns a fresh build identifier.
func NewBuildID() string { return uuid.NewString() }

// DBPath returns the history database of the project rooted at root,
// next to its checksum file.
func DBPath(cacheDir, root string) (string, error) {
	key, err := incremental.ProjectKey(root)
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, key+".db"), nil
}

// OpenProject opens the history store of root under cacheDir.
func OpenProject(cacheDir, root string) (*SQLiteStore, error) {
	path, err := DBPath(cacheDir, root)
	if err != nil {
		return nil, wrap(ErrDatabaseOpenFailed, err)
	}
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Opened build history", logfields.Path(path))
	return store, nil
}

// Exists reports whether root already has a history database.
func Exists(cacheDir, root string) bool {
	path, err := DBPath(cacheDir, root)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
