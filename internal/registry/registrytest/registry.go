// Package registrytest provides an in-memory member registry with the same
// wire contract as the real service. Tests point a registry.Client at it,
// and `rosterline serve --demo-registry` mounts it so the pipeline can be
// exercised without a deployment. It keeps accepted members in memory only;
// it is not a persistence layer.
package registrytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"rosterline/internal/core"
	"rosterline/internal/schema"
)

// DefaultMapping mirrors the column layout of the legacy roster export.
func DefaultMapping() core.FieldMapping {
	return core.FieldMapping{
		"Name":       schema.FieldNameCombined,
		"Call Sign":  schema.FieldCallSign,
		"Class":      schema.FieldClass,
		"Email":      schema.FieldEmail,
		"Membership": schema.FieldMembership,
		"Join Date":  schema.FieldJoinDate,
		"Mail List":  schema.FieldMailList,
	}
}

// Registry is the fake service. The zero value is not usable; call New.
type Registry struct {
	router chi.Router

	mu       sync.Mutex
	mapping  core.FieldMapping
	token    string
	members  []core.Member
	rejected map[string]string // email -> rejection reason
	failWith int               // force this status on bulk insert
	bulkHits int
}

// New creates a fake registry serving DefaultMapping.
func New() *Registry {
	r := &Registry{
		mapping:  DefaultMapping(),
		rejected: make(map[string]string),
	}
	r.router = chi.NewRouter()
	r.router.Get("/api/v1/members/field-mapping", r.handleFieldMapping)
	r.router.Post("/api/v1/members/bulk", r.handleBulkInsert)
	return r
}

func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// RequireToken makes every call demand this bearer credential.
func (r *Registry) RequireToken(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = token
}

// SetMapping replaces the served field mapping.
func (r *Registry) SetMapping(m core.FieldMapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping = m
}

// RejectEmail makes the bulk endpoint reject any member with this email,
// reporting the given reason. Simulates registry-side duplicates.
func (r *Registry) RejectEmail(email, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[strings.ToLower(email)] = reason
}

// FailBulkWith forces the bulk endpoint to answer with an HTTP status.
func (r *Registry) FailBulkWith(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = status
}

// Members returns a copy of everything accepted so far.
func (r *Registry) Members() []core.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Member, len(r.members))
	copy(out, r.members)
	return out
}

// BulkCalls returns how many bulk-insert requests arrived.
func (r *Registry) BulkCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bulkHits
}

func (r *Registry) handleFieldMapping(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.authorized(req) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid bearer token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mapping": r.mapping})
}

func (r *Registry) handleBulkInsert(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bulkHits++

	if !r.authorized(req) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid bearer token"})
		return
	}
	if r.failWith != 0 {
		writeJSON(w, r.failWith, map[string]string{"error": "induced failure"})
		return
	}

	var body struct {
		Members []core.Member `json:"members"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}

	// Schema-level failures answer 422 with structured locations, like the
	// real service does for payloads the client should have caught.
	var ve []map[string]string
	for i, m := range body.Members {
		if m.Email == "" {
			ve = append(ve, map[string]string{
				"location": fmt.Sprintf("body.members[%d].email", i),
				"message":  "email is required",
			})
		}
		if m.LastName == "" {
			ve = append(ve, map[string]string{
				"location": fmt.Sprintf("body.members[%d].lastName", i),
				"message":  "last name is required",
			})
		}
	}
	if len(ve) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": ve})
		return
	}

	outcome := core.BulkOutcome{}
	for i, m := range body.Members {
		if reason, bad := r.rejected[strings.ToLower(m.Email)]; bad {
			outcome.Rejected++
			outcome.Rejections = append(outcome.Rejections, core.BulkRejection{
				Index:  i,
				Field:  schema.FieldEmail,
				Reason: reason,
			})
			continue
		}
		outcome.Accepted++
		r.members = append(r.members, m)
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (r *Registry) authorized(req *http.Request) bool {
	if r.token == "" {
		return true
	}
	return req.Header.Get("Authorization") == "Bearer "+r.token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
