package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Service tracks live import sessions for the web layer. Each session owns
// its own immutable mapping copy and batch; no state is shared between
// sessions.
type Service struct {
	registry Registry
	pageSize int

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a session service backed by the given registry client.
func NewService(reg Registry, pageSize int) *Service {
	return &Service{
		registry: reg,
		pageSize: pageSize,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new import session, fetches the field mapping, and runs
// the uploaded file through parse, map, and validate. A file the pipeline
// cannot start on (empty or header-only) discards the session.
func (s *Service) Create(ctx context.Context, fileData []byte) (*Session, error) {
	sess, err := NewSession(ctx, uuid.NewString(), s.registry, s.pageSize)
	if err != nil {
		return nil, err
	}
	if err := sess.LoadFile(fileData); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get returns a live session by ID.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Abandon discards a session and its batch. Reports whether it existed.
func (s *Service) Abandon(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Abandon()
	delete(s.sessions, id)
	return true
}

// Remove drops a completed session from tracking.
func (s *Service) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
