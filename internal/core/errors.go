package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for session state violations.
var (
	// ErrNoDataRows means the file was empty or header-only. This is the
	// only fatal error in the pipeline; the session stays in Upload.
	ErrNoDataRows = errors.New("file has no data rows")

	// ErrMappingLocked rejects mid-session re-fetches of the field
	// mapping. The mapping is immutable for the life of a session.
	ErrMappingLocked = errors.New("field mapping is fixed for the session; start a new import to pick up changes")

	// ErrSubmissionInFlight enforces single-flight submission.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	// ErrSessionCompleted means the batch was already accepted and
	// discarded; re-submission requires a fresh import session.
	ErrSessionCompleted = errors.New("import session already completed")

	// ErrNotPreviewing means the session has no loaded batch to act on.
	ErrNotPreviewing = errors.New("no import batch loaded")

	// ErrFileLoaded means the session already consumed a file. One session
	// imports one file; re-entering Upload starts a new session.
	ErrFileLoaded = errors.New("session already has a file loaded; start a new import session")
)

// RefusedError is returned when submission is refused locally because the
// batch still contains invalid records. No network call was made.
type RefusedError struct {
	InvalidRows int
}

func (e *RefusedError) Error() string {
	if e.InvalidRows == 1 {
		return "submission refused: 1 row has validation errors"
	}
	return fmt.Sprintf("submission refused: %d rows have validation errors", e.InvalidRows)
}

// retryable is implemented by transport-level errors that leave the batch
// untouched, so the caller may submit again unchanged.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err represents a transport-level failure the
// caller can retry without re-uploading the file.
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r) && r.Retryable()
}
