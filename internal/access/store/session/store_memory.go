// Package session provides SessionDirectory implementations.
package session

import (
	"context"
	"sync"
	"time"

	"aegis/internal/access/models"
	id "aegis/pkg/domain"
	dErrors "aegis/pkg/domain-errors"
)

// Error Contract:
// - Delete of an unknown session returns nil
// - Create rejects a nil session with CodeInvariantViolation
// - Infrastructure failures are returned wrapped with context
//
// InMemoryStore stores sessions in memory for tests and single-process use.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]models.SessionRecord
}

// NewInMemory constructs an empty in-memory session store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID]models.SessionRecord)}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.SessionRecord) error {
	if session == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *InMemoryStore) ListNonExpired(_ context.Context, userID id.UserID, now time.Time) ([]*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*models.SessionRecord, 0)
	for _, session := range s.sessions {
		if session.UserID == userID && session.IsActive(now) {
			sessions = append(sessions, &session)
		}
	}
	return sessions, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// DeleteExpired drops sessions that expired at or before now and returns how
// many were removed.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, session := range s.sessions {
		if !session.IsActive(now) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}
