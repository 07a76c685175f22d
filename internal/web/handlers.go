package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rosterline/internal/about"
	"rosterline/internal/core"
	"rosterline/internal/logging"
)

// handleVersion reports the running build.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, about.Current())
}

// sessionResponse is the JSON shape for session status.
type sessionResponse struct {
	SessionID   string                 `json:"sessionId"`
	State       string                 `json:"state"`
	RowCount    int                    `json:"rowCount"`
	InvalidRows int                    `json:"invalidRows"`
	TotalPages  int                    `json:"totalPages"`
	LastResult  *core.SubmissionResult `json:"lastResult,omitempty"`
}

func (s *Server) sessionStatus(sess *core.Session) sessionResponse {
	resp := sessionResponse{
		SessionID: sess.ID,
		State:     string(sess.State()),
	}
	if report, err := sess.Report(); err == nil {
		resp.RowCount = report.RowCount
	}
	resp.InvalidRows = sess.InvalidRows()
	if _, pages, err := sess.Page(1); err == nil {
		resp.TotalPages = pages
	}
	resp.LastResult = sess.Result()
	return resp
}

// handleCreateSession opens an import session from an uploaded roster file.
// The file arrives as the "file" part of a multipart form; the whole
// pipeline up to preview (parse, map, validate) runs before this returns.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondErrorMessage(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondErrorMessage(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondErrorMessage(w, r, http.StatusInternalServerError, "failed to read file")
		return
	}

	sess, err := s.service.Create(r.Context(), data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import session created",
		"session_id", sess.ID,
		"file_name", header.Filename,
		"invalid_rows", sess.InvalidRows(),
	)

	writeJSON(w, http.StatusCreated, s.sessionStatus(sess))
}

// getSession resolves the session from the URL, writing a 404 on miss.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, ok := s.service.Get(id)
	if !ok {
		respondErrorMessage(w, r, http.StatusNotFound, "import session not found")
		return nil, false
	}
	return sess, true
}

// handleSessionStatus returns the session's lifecycle state and counts.
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessionStatus(sess))
}

// handleMapping returns the field mapping the session was opened with.
func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.FieldMapping{"mapping": sess.Mapping()})
}

// handleReport returns the parse report: headers, row count, dropped rows.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	report, err := sess.Report()
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// previewResponse is one preview page plus paging metadata.
type previewResponse struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Records    core.ImportBatch `json:"records"`
}

// handlePreview returns one page of the batch. Out-of-range page numbers
// saturate rather than error.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	page := parseIntParam(r, "page", 1)
	records, totalPages, err := sess.Page(page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Page:       page,
		TotalPages: totalPages,
		Records:    records,
	})
}

// handleSubmit sends the batch to the registry. Local refusal, in-flight
// submission, and completed sessions come back as errors; a response with
// rejections means the registry refused part of the batch and the session
// returned to previewing.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}

	result, err := sess.Submit(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	logger := logging.WithFields(r.Context(),
		"session_id", sess.ID,
		"accepted", result.Accepted,
		"rejected", result.Rejected,
	)
	if result.Rejected > 0 {
		logger.Warn("submission partially rejected")
	} else {
		logger.Info("submission completed")
		s.service.Remove(sess.ID)
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAbandon discards the session and its batch.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.service.Abandon(id) {
		respondErrorMessage(w, r, http.StatusNotFound, "import session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
