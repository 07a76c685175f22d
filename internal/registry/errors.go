package registry

import "fmt"

// TransportError wraps a network or timeout failure. The request may never
// have reached the registry; the caller's batch is untouched and the same
// submission can be retried unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("registry unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable marks transport failures as safe to retry.
func (e *TransportError) Retryable() bool { return true }

// StatusError is a response with an unexpected HTTP status. Server-side
// failures (5xx) and throttling are retryable; client errors are not.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registry returned status %d", e.Code)
}

// Retryable reports whether the status suggests a transient condition.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500 || e.Code == 429
}
