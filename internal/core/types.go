// Package core implements the roster import pipeline: field mapping,
// validation, preview paging, and the all-or-nothing submission to the
// member registry. It has no UI dependencies and performs no I/O except
// through the Registry interface.
package core

import (
	"context"

	"rosterline/internal/csv"
)

// FieldMapping translates external column headers to internal field names.
// It is fetched from the registry once per session and read-only afterward.
type FieldMapping map[string]string

// CandidateRecord is a member entry produced by mapping, not yet guaranteed
// valid. RowNumber is the physical line in the source file; it is assigned
// at parse time and is the sole cross-referencing key between the preview,
// validation errors, and submission results.
type CandidateRecord struct {
	RowNumber int               `json:"rowNumber"`
	Fields    map[string]string `json:"fields"`
	Errors    map[string]string `json:"errors,omitempty"`

	// badDates holds raw cell values that failed date parsing during
	// mapping. The mapper never errors; the validator reports these.
	badDates map[string]string
}

// Get returns the derived value for an internal field, or "" if absent.
func (c *CandidateRecord) Get(field string) string {
	return c.Fields[field]
}

// Valid reports whether the record currently carries no validation errors.
func (c *CandidateRecord) Valid() bool {
	return len(c.Errors) == 0
}

// ImportBatch is the full ordered sequence of candidate records produced
// from one source file. It is owned by a single session and discarded once
// submission completes or the session is abandoned.
type ImportBatch []*CandidateRecord

// InvalidCount returns the number of records carrying validation errors.
func (b ImportBatch) InvalidCount() int {
	n := 0
	for _, r := range b {
		if !r.Valid() {
			n++
		}
	}
	return n
}

// Member is one record of the bulk-insert payload. Field names match the
// registry's JSON schema.
type Member struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	CallSign   string `json:"callSign,omitempty"`
	Class      string `json:"class,omitempty"`
	Membership string `json:"membership,omitempty"`
	JoinDate   string `json:"joinDate"`
	MailList   bool   `json:"mailList"`
}

// BulkOutcome is the registry's view of one bulk-insert call. Rejections
// are keyed by index into the submitted payload; the session translates
// indexes back to row numbers.
type BulkOutcome struct {
	Accepted   int             `json:"accepted"`
	Rejected   int             `json:"rejected"`
	Rejections []BulkRejection `json:"rejections,omitempty"`
}

// BulkRejection is one record the registry refused, by payload index.
type BulkRejection struct {
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// RowRejection is a registry rejection translated back to the source row.
type RowRejection struct {
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"field,omitempty"`
	Reason    string `json:"reason"`
}

// SubmissionResult summarizes one submission attempt.
type SubmissionResult struct {
	Accepted   int            `json:"accepted"`
	Rejected   int            `json:"rejected"`
	Rejections []RowRejection `json:"rejections,omitempty"`
}

// ParseReport surfaces what the parser dropped, for the preview screen.
type ParseReport struct {
	Headers   []string        `json:"headers"`
	RowCount  int             `json:"rowCount"`
	Malformed []csv.Malformed `json:"malformed,omitempty"`
}

// Registry is the slice of the member registry service the pipeline
// consumes. Implementations attach the caller's bearer credential; the
// pipeline never inspects it.
type Registry interface {
	// FieldMapping fetches the external-header to internal-field mapping.
	FieldMapping(ctx context.Context) (FieldMapping, error)

	// BulkInsert submits the full batch in one call. A non-nil error means
	// the call itself failed; per-record rejections come back in the
	// outcome with a nil error.
	BulkInsert(ctx context.Context, members []Member) (*BulkOutcome, error)
}
