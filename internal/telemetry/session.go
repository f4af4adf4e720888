package telemetry

import (
	"context"

	"stdict-mcp/internal/session"
)

// SessionManagerWrapper records session creation and deletion.
type SessionManagerWrapper struct {
	session.Manager
	metrics *Metrics
}

// NewSessionManagerWrapper wraps manager.
func NewSessionManagerWrapper(manager session.Manager, metrics *Metrics) *SessionManagerWrapper {
	return &SessionManagerWrapper{
		Manager: manager,
		metrics: metrics,
	}
}

// CreateSession records a created session.
func (w *SessionManagerWrapper) CreateSession(ctx context.Context, protocolVersion string, clientInfo session.ClientInfo) (*session.Session, error) {
	sess, err := w.Manager.CreateSession(ctx, protocolVersion, clientInfo)
	if err == nil {
		w.metrics.RecordSessionCreated()
	}
	return sess, err
}

// DeleteSession records the lifetime of a deleted session.
func (w *SessionManagerWrapper) DeleteSession(ctx context.Context, sessionID string) error {
	sess, getErr := w.Manager.ValidateSession(ctx, sessionID)

	err := w.Manager.DeleteSession(ctx, sessionID)
	if err == nil && getErr == nil {
		w.metrics.RecordSessionDeleted(sess.Age())
	}
	return err
}

// ExpiryRecorder returns a session.ManagerConfig.OnExpire hook.
func ExpiryRecorder(metrics *Metrics) func(*session.Session) {
	return func(s *session.Session) {
		metrics.RecordSessionExpired(s.Age())
	}
}
