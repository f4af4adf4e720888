package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestMiddleware(t *testing.T) (*DefaultSessionManager, http.Handler, **Session) {
	t.Helper()
	manager, store := newTestManager(time.Hour, nil)
	t.Cleanup(func() { store.Close() })

	var seen *Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := NewSessionMiddleware(manager, zerolog.Nop()).Handler()(next)
	return manager, handler, &seen
}

func TestSessionMiddleware_NoHeaderPassesThrough(t *testing.T) {
	_, handler, seen := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if *seen != nil {
		t.Error("No session should be attached without the header")
	}
}

func TestSessionMiddleware_AttachesValidSession(t *testing.T) {
	manager, handler, seen := newTestMiddleware(t)
	session, _ := manager.CreateSession(context.Background(), "2025-06-18", testClient)

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set(HeaderName, session.ID)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if *seen == nil || (*seen).ID != session.ID {
		t.Errorf("Expected session %s in context, got %+v", session.ID, *seen)
	}
}

func TestSessionMiddleware_RejectsBadSessions(t *testing.T) {
	_, handler, _ := newTestMiddleware(t)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"malformed", "sess.1.abc", http.StatusBadRequest},
		{"unknown", "6f1c2a43-8f7e-4f6b-9d0a-3b4c5d6e7f80", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			req.Header.Set(HeaderName, tt.id)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}

			var body struct {
				JSONRPC string          `json:"jsonrpc"`
				ID      json.RawMessage `json:"id"`
				Error   struct {
					Code    int    `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if body.JSONRPC != "2.0" || string(body.ID) != "null" || body.Error.Code != -32600 {
				t.Errorf("Unexpected error body %s", w.Body.String())
			}
		})
	}
}

func TestSessionMiddleware_OptionsSkipsValidation(t *testing.T) {
	_, handler, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set(HeaderName, "garbage")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for OPTIONS, got %d", w.Code)
	}
}
