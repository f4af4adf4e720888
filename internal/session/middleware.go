package session

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"stdict-mcp/internal/jsonrpc"
)

type sessionContextKey struct{}

// SessionMiddleware attaches the session named by the Mcp-Session-Id header
// to the request context. Requests without the header pass through untouched;
// whether a session is required is decided by the MCP handler, since
// initialize never carries one.
type SessionMiddleware struct {
	manager Manager
	logger  zerolog.Logger
}

// NewSessionMiddleware creates the middleware.
func NewSessionMiddleware(manager Manager, logger zerolog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		manager: manager,
		logger:  logger.With().Str("component", "session_middleware").Logger(),
	}
}

// Handler returns the middleware function.
func (m *SessionMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(HeaderName)
			if sessionID == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			session, err := m.manager.ValidateSession(r.Context(), sessionID)
			if err != nil {
				m.logger.Debug().
					Err(err).
					Str("session_id", sessionID).
					Str("path", r.URL.Path).
					Msg("Session validation failed")
				sendError(w, r, statusFor(err), err.Error())
				return
			}

			if err := m.manager.RefreshSession(r.Context(), sessionID); err != nil {
				m.logger.Warn().
					Err(err).
					Str("session_id", sessionID).
					Msg("Failed to refresh session")
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// statusFor maps session errors to HTTP status codes. Unknown and expired
// sessions get 404 so that clients start a new session.
func statusFor(err error) int {
	switch ErrorCode(err) {
	case ErrSessionInvalid:
		return http.StatusBadRequest
	case ErrSessionNotFound, ErrSessionExpired:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// sendError writes a JSON-RPC error body with a null id, since the request
// was rejected before its body was read.
func sendError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, jsonrpc.NewErrorResponse(nil, jsonrpc.NewError(jsonrpc.InvalidRequest, message, nil)))
}

// WithSession returns a context carrying session.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext returns the session attached by the middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}
