package eventstore

import (
	ferrors "git.home.luguber.info/inful/courseforge/internal/foundation/errors"
)

// Sentinel errors for event store failures. Build history is advisory, so
// they are warnings.
var (
	ErrDatabaseOpenFailed     = historyError("could not open build history database")
	ErrInitializeSchemaFailed = historyError("failed to initialize build history schema")
	ErrEventAppendFailed      = historyError("failed to append event to build history")
	ErrEventQueryFailed       = historyError("failed to query build history")
	ErrMarshalPayloadFailed   = historyError("failed to marshal event payload")
)

func historyError(msg string) *ferrors.ClassifiedError {
	return ferrors.CacheError(msg).Warning().Build()
}

// wrap attaches cause to a copy of the sentinel so errors.Is matches both.
func wrap(sentinel *ferrors.ClassifiedError, cause error) error {
	return ferrors.WrapError(cause, sentinel.Category(), sentinel.Message()).
		WithSeverity(sentinel.Severity()).
		Build()
}
