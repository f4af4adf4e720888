// Package session tracks MCP sessions for the streamable HTTP transport. A
// session is created by initialize and identified by the Mcp-Session-Id
// header on every later request. Sessions carry handshake state only.
package session

import (
	"context"
	"time"
)

// HeaderName is the HTTP header carrying the session ID.
const HeaderName = "Mcp-Session-Id"

// Session is an initialized MCP client connection.
type Session struct {
	ID              string     `json:"id"`
	ProtocolVersion string     `json:"protocol_version"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAccess      time.Time  `json:"last_access"`
	ExpiresAt       time.Time  `json:"expires_at"`
	ClientInfo      ClientInfo `json:"client_info"`
}

// ClientInfo describes the peer. Name and Version come from the initialize
// request; RemoteAddr and UserAgent from the HTTP request.
type ClientInfo struct {
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Refresh slides the expiry forward by timeout.
func (s *Session) Refresh(timeout time.Duration) {
	now := time.Now()
	s.LastAccess = now
	s.ExpiresAt = now.Add(timeout)
}

// Age is the time since the session was created.
func (s *Session) Age() time.Duration {
	return time.Since(s.CreatedAt)
}

// Manager defines session lifecycle operations.
type Manager interface {
	// CreateSession stores a new session with a fresh ID.
	CreateSession(ctx context.Context, protocolVersion string, clientInfo ClientInfo) (*Session, error)

	// ValidateSession returns the session if the ID is well formed, known and not expired.
	ValidateSession(ctx context.Context, sessionID string) (*Session, error)

	// RefreshSession slides the session's expiry.
	RefreshSession(ctx context.Context, sessionID string) error

	// DeleteSession ends a session.
	DeleteSession(ctx context.Context, sessionID string) error

	// CleanupExpiredSessions removes all expired sessions and returns how many were removed.
	CleanupExpiredSessions(ctx context.Context) (int, error)

	// GetActiveSessionCount returns the number of stored sessions.
	GetActiveSessionCount(ctx context.Context) (int, error)

	// GetSessionStats returns counters for the health endpoint.
	GetSessionStats(ctx context.Context) (map[string]interface{}, error)
}

// Store persists sessions.
type Store interface {
	Set(ctx context.Context, sessionID string, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]*Session, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
