package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryStore keeps sessions in process memory. Sessions are copied on the
// way in and out so callers never share a *Session with the store.
type MemoryStore struct {
	sessions map[string]Session
	mutex    sync.RWMutex
	logger   zerolog.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		logger:   logger.With().Str("component", "memory_store").Logger(),
	}
}

// Set stores or replaces a session.
func (s *MemoryStore) Set(ctx context.Context, sessionID string, session *Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.sessions[sessionID] = *session

	s.logger.Debug().
		Str("session_id", sessionID).
		Time("expires_at", session.ExpiresAt).
		Msg("Stored session")
	return nil
}

// Get returns a copy of the session.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, NewSessionNotFoundError(sessionID)
	}
	return &session, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return NewSessionNotFoundError(sessionID)
	}
	delete(s.sessions, sessionID)

	s.logger.Debug().
		Str("session_id", sessionID).
		Msg("Deleted session")
	return nil
}

// List returns copies of all stored sessions, expired or not.
func (s *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		session := session
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

// Count returns the number of stored sessions.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions), nil
}

// Close drops every session.
func (s *MemoryStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cleared := len(s.sessions)
	s.sessions = make(map[string]Session)

	s.logger.Info().
		Int("cleared_sessions", cleared).
		Msg("Memory store closed")
	return nil
}

// GetStats returns store details merged into the manager's stats.
func (s *MemoryStore) GetStats() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return map[string]interface{}{
		"total_sessions": len(s.sessions),
		"store_type":     "memory",
	}
}
