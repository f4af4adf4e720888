package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ManagerConfig configures DefaultSessionManager.
type ManagerConfig struct {
	SessionTimeout time.Duration

	// OnExpire, if set, is called for each session removed because it expired.
	OnExpire func(s *Session)
}

// DefaultSessionManager implements Manager over a Store.
type DefaultSessionManager struct {
	store    Store
	timeout  time.Duration
	onExpire func(s *Session)
	logger   zerolog.Logger
}

// NewDefaultSessionManager creates a session manager.
func NewDefaultSessionManager(store Store, config ManagerConfig, logger zerolog.Logger) *DefaultSessionManager {
	return &DefaultSessionManager{
		store:    store,
		timeout:  config.SessionTimeout,
		onExpire: config.OnExpire,
		logger:   logger.With().Str("component", "session_manager").Logger(),
	}
}

// CreateSession stores a new session for a client that completed initialize.
func (m *DefaultSessionManager) CreateSession(ctx context.Context, protocolVersion string, clientInfo ClientInfo) (*Session, error) {
	sessionID, err := NewID()
	if err != nil {
		m.logger.Error().
			Err(err).
			Str("remote_addr", clientInfo.RemoteAddr).
			Msg("Failed to generate session ID")
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:              sessionID,
		ProtocolVersion: protocolVersion,
		CreatedAt:       now,
		LastAccess:      now,
		ExpiresAt:       now.Add(m.timeout),
		ClientInfo:      clientInfo,
	}

	if err := m.store.Set(ctx, sessionID, session); err != nil {
		m.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to store session")
		return nil, NewSessionStorageError("create", err)
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Str("protocol_version", protocolVersion).
		Str("client", clientInfo.Name).
		Str("client_version", clientInfo.Version).
		Str("remote_addr", clientInfo.RemoteAddr).
		Msg("Session created")

	return session, nil
}

// ValidateSession returns the session if it is usable. An expired session is
// removed and reported as expired.
func (m *DefaultSessionManager) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	if err := ValidateID(sessionID); err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		m.logger.Debug().
			Str("session_id", sessionID).
			Time("expires_at", session.ExpiresAt).
			Msg("Session has expired")
		m.expire(ctx, session)
		return nil, NewSessionExpiredError(sessionID)
	}

	return session, nil
}

// RefreshSession slides the expiry of a valid session.
func (m *DefaultSessionManager) RefreshSession(ctx context.Context, sessionID string) error {
	session, err := m.ValidateSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session.Refresh(m.timeout)

	if err := m.store.Set(ctx, sessionID, session); err != nil {
		return NewSessionStorageError("refresh", err)
	}
	return nil
}

// DeleteSession ends a session.
func (m *DefaultSessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Msg("Session deleted")
	return nil
}

// CleanupExpiredSessions removes every expired session.
func (m *DefaultSessionManager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return 0, NewSessionStorageError("cleanup_list", err)
	}

	deleted := 0
	for _, session := range sessions {
		if !session.IsExpired() {
			continue
		}
		if m.expire(ctx, session) {
			deleted++
		}
	}

	if deleted > 0 {
		m.logger.Info().
			Int("deleted_count", deleted).
			Int("total_sessions", len(sessions)).
			Msg("Expired sessions removed")
	}
	return deleted, nil
}

// expire deletes an expired session and reports whether this call removed it.
func (m *DefaultSessionManager) expire(ctx context.Context, session *Session) bool {
	if err := m.store.Delete(ctx, session.ID); err != nil {
		if ErrorCode(err) != ErrSessionNotFound {
			m.logger.Warn().
				Err(err).
				Str("session_id", session.ID).
				Msg("Failed to delete expired session")
		}
		return false
	}
	if m.onExpire != nil {
		m.onExpire(session)
	}
	return true
}

// GetActiveSessionCount returns the number of stored sessions.
func (m *DefaultSessionManager) GetActiveSessionCount(ctx context.Context) (int, error) {
	count, err := m.store.Count(ctx)
	if err != nil {
		return 0, NewSessionStorageError("count", err)
	}
	return count, nil
}

// GetSessionStats summarises the store for the health endpoint.
func (m *DefaultSessionManager) GetSessionStats(ctx context.Context) (map[string]interface{}, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return nil, NewSessionStorageError("stats", err)
	}

	active, expired := 0, 0
	for _, session := range sessions {
		if session.IsExpired() {
			expired++
		} else {
			active++
		}
	}

	stats := map[string]interface{}{
		"total_sessions":   len(sessions),
		"active_sessions":  active,
		"expired_sessions": expired,
		"session_timeout":  m.timeout.String(),
	}

	if storeStats, ok := m.store.(interface{ GetStats() map[string]interface{} }); ok {
		for k, v := range storeStats.GetStats() {
			stats["store_"+k] = v
		}
	}

	return stats, nil
}
