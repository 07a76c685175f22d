package web

// errors.go maps pipeline errors to HTTP responses.
//
// Every handler funnels failures through respondError, which logs the
// technical error with the request ID for correlation and returns a JSON
// body the client can act on. Retryable transport failures are flagged so
// the client knows the batch is intact and the submission can be repeated.

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"rosterline/internal/core"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// respondError logs err and writes it as a JSON error response with a
// status derived from the error kind.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	retry := core.IsRetryable(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"retryable", retry,
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Retryable: retry,
	})
}

// statusForError picks the HTTP status for a pipeline error.
func statusForError(err error) int {
	var refused *core.RefusedError
	switch {
	case errors.As(err, &refused):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoDataRows):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, core.ErrSessionCompleted):
		return http.StatusGone
	case errors.Is(err, core.ErrNotPreviewing),
		errors.Is(err, core.ErrFileLoaded),
		errors.Is(err, core.ErrMappingLocked):
		return http.StatusConflict
	case core.IsRetryable(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondErrorMessage writes a plain-message error without a backing error
// value, for request-shape problems like a missing file part.
func respondErrorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	slog.Warn("bad request",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, status, ErrorResponse{Error: message})
}
