package core

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"rosterline/internal/csv"
	"rosterline/internal/schema"
)

// State is the lifecycle stage of an import session.
type State string

const (
	StateUpload     State = "upload"
	StateParsed     State = "parsed"
	StateMapped     State = "mapped"
	StatePreviewing State = "previewing"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed" // retryable; batch preserved
)

// Session is one import attempt, from file upload through submission
// completion or abandonment. It owns exactly one ImportBatch and one
// immutable copy of the field mapping. All methods are safe for concurrent
// use, and at most one submission can be outstanding at a time.
type Session struct {
	ID string

	registry Registry
	pageSize int

	mu        sync.Mutex
	state     State
	mapping   FieldMapping
	headers   []string
	malformed []csv.Malformed
	batch     ImportBatch
	result    *SubmissionResult
	createdAt time.Time
}

// NewSession fetches the field mapping from the registry and opens a
// session in the Upload state. The mapping is immutable from here on.
func NewSession(ctx context.Context, id string, reg Registry, pageSize int) (*Session, error) {
	mapping, err := reg.FieldMapping(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch field mapping: %w", err)
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Session{
		ID:        id,
		registry:  reg,
		pageSize:  pageSize,
		state:     StateUpload,
		mapping:   mapping,
		createdAt: time.Now(),
	}, nil
}

// DefaultPageSize is the preview page size when none is configured.
const DefaultPageSize = 25

// State returns the current lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mapping returns a copy of the session's field mapping.
func (s *Session) Mapping() FieldMapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(FieldMapping, len(s.mapping))
	for k, v := range s.mapping {
		out[k] = v
	}
	return out
}

// RefreshMapping always fails: the mapping is fetched once at session start
// and re-fetching it mid-session would desynchronize already-mapped rows.
func (s *Session) RefreshMapping(context.Context) error {
	return ErrMappingLocked
}

// LoadFile parses, maps, and validates one roster export. The session must
// be in the Upload state; loading a second file requires a new session.
// An empty or header-only file terminates the attempt with ErrNoDataRows
// and leaves the session in Upload with no partial state.
func (s *Session) LoadFile(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUpload {
		return ErrFileLoaded
	}

	doc, err := csv.Parse(string(sanitizeUTF8(data)))
	if err != nil {
		return fmt.Errorf("parse roster: %w", ErrNoDataRows)
	}
	if len(doc.Rows) == 0 {
		return fmt.Errorf("parse roster: %w", ErrNoDataRows)
	}
	s.state = StateParsed
	s.headers = doc.Headers
	s.malformed = doc.Malformed

	s.batch = MapRows(doc.Headers, doc.Rows, s.mapping)
	s.state = StateMapped

	ValidateBatch(s.batch)
	s.state = StatePreviewing
	return nil
}

// Report returns what the parser saw: headers, row count, and dropped rows.
func (s *Session) Report() (*ParseReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nil, ErrNotPreviewing
	}
	return &ParseReport{
		Headers:   s.headers,
		RowCount:  len(s.batch),
		Malformed: s.malformed,
	}, nil
}

// Page returns one preview page of the batch plus the total page count.
// The view is read-only; records keep their validation errors and order.
func (s *Session) Page(pageNumber int) (ImportBatch, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nil, 0, ErrNotPreviewing
	}
	return Page(s.batch, s.pageSize, pageNumber), TotalPages(len(s.batch), s.pageSize), nil
}

// InvalidRows returns how many records currently carry validation errors.
func (s *Session) InvalidRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.InvalidCount()
}

// Submit sends the batch to the registry in a single bulk call.
//
// Submission is refused locally, with no network call, while any record
// still has validation errors. A transport-level failure moves the session
// to Failed and keeps the batch byte-for-byte intact so the same submission
// can be retried. Registry-side rejections come back keyed by row number,
// are attached to the offending records, and return the session to
// Previewing. Only full acceptance completes the session and discards the
// batch.
func (s *Session) Submit(ctx context.Context) (*SubmissionResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case StateCompleted:
		s.mu.Unlock()
		return nil, ErrSessionCompleted
	case StatePreviewing, StateFailed:
		// ok
	default:
		s.mu.Unlock()
		return nil, ErrNotPreviewing
	}

	if n := s.batch.InvalidCount(); n > 0 {
		s.mu.Unlock()
		return nil, &RefusedError{InvalidRows: n}
	}

	members := make([]Member, len(s.batch))
	rowNumbers := make([]int, len(s.batch))
	for i, rec := range s.batch {
		members[i] = buildMember(rec)
		rowNumbers[i] = rec.RowNumber
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	outcome, err := s.registry.BulkInsert(ctx, members)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("bulk insert: %w", err)
	}

	result := &SubmissionResult{
		Accepted: outcome.Accepted,
		Rejected: outcome.Rejected,
	}
	for _, rej := range outcome.Rejections {
		rr := RowRejection{Field: rej.Field, Reason: rej.Reason}
		if rej.Index >= 0 && rej.Index < len(rowNumbers) {
			rr.RowNumber = rowNumbers[rej.Index]
		}
		result.Rejections = append(result.Rejections, rr)
	}

	if len(result.Rejections) > 0 {
		s.attachRejections(result.Rejections)
		s.state = StatePreviewing
		s.result = result
		return result, nil
	}

	s.state = StateCompleted
	s.result = result
	s.batch = nil // single use; a new submission needs a fresh session
	return result, nil
}

// attachRejections records server-side reasons on the rejected records so
// the preview highlights them and a blind resubmit is blocked until the
// operator corrects the rows.
func (s *Session) attachRejections(rejections []RowRejection) {
	byRow := make(map[int]*CandidateRecord, len(s.batch))
	for _, rec := range s.batch {
		byRow[rec.RowNumber] = rec
	}
	for _, rej := range rejections {
		rec, ok := byRow[rej.RowNumber]
		if !ok {
			continue
		}
		field := rej.Field
		if field == "" {
			field = "record"
		}
		if rec.Errors == nil {
			rec.Errors = make(map[string]string)
		}
		rec.Errors[field] = rej.Reason
	}
}

// Result returns the last submission result, if any.
func (s *Session) Result() *SubmissionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Abandon discards the batch. The session cannot be reused afterward.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = nil
	s.state = StateCompleted
}

// buildMember constructs the submission payload for one record, applying
// field defaults the preview deliberately does not show: join date falls
// back to today, opt-in flags to false.
func buildMember(rec *CandidateRecord) Member {
	joinDate := rec.Get(schema.FieldJoinDate)
	if joinDate == "" {
		joinDate = time.Now().Format(schema.CanonicalDateLayout)
	}
	return Member{
		FirstName:  rec.Get(schema.FieldFirstName),
		LastName:   rec.Get(schema.FieldLastName),
		Email:      rec.Get(schema.FieldEmail),
		CallSign:   rec.Get(schema.FieldCallSign),
		Class:      rec.Get(schema.FieldClass),
		Membership: rec.Get(schema.FieldMembership),
		JoinDate:   joinDate,
		MailList:   rec.Get(schema.FieldMailList) == "true",
	}
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
// Roster exports occasionally arrive in Windows-1252.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
