package mcp

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stdict-mcp/internal/session"
	"stdict-mcp/internal/tools"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`

func newHTTPTestServer(t *testing.T, requireSession bool) (*httptest.Server, session.Manager) {
	t.Helper()
	logger := zerolog.Nop()
	store := session.NewMemoryStore(logger)
	t.Cleanup(func() { store.Close() })
	manager := session.NewDefaultSessionManager(store, session.ManagerConfig{SessionTimeout: time.Hour}, logger)

	stub := newStub("search")
	stub.body = []byte(`{"channel":{"total":0}}`)
	registry := tools.NewRegistry()
	registry.Register(stub)

	h := NewHandler(registry, manager, Config{Version: "test", RequireSession: requireSession}, logger)

	r := chi.NewRouter()
	r.Use(session.NewSessionMiddleware(manager, logger).Handler())
	r.Handle("/mcp", h)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, manager
}

func post(t *testing.T, url, sessionID, accept, body string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if sessionID != "" {
		req.Header.Set(session.HeaderName, sessionID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func TestHTTP_SessionLifecycle(t *testing.T) {
	srv, _ := newHTTPTestServer(t, true)
	url := srv.URL + "/mcp"
	accept := "application/json, text/event-stream"

	resp := post(t, url, "", accept, initializeBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for initialize, got %d", resp.StatusCode)
	}
	sessionID := resp.Header.Get(session.HeaderName)
	if sessionID == "" {
		t.Fatal("Expected Mcp-Session-Id header on initialize")
	}
	body := decodeBody(t, resp)
	if body["result"].(map[string]any)["protocolVersion"] != "2025-06-18" {
		t.Errorf("Unexpected initialize result %v", body)
	}

	resp = post(t, url, "", accept, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", resp.StatusCode)
	}

	resp = post(t, url, sessionID, accept, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("Expected 202 for notification, got %d", resp.StatusCode)
	}

	resp = post(t, url, sessionID, accept, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"search","arguments":{"q":"나무"}}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for tools/call, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Expected JSON response, got %s", ct)
	}
	body = decodeBody(t, resp)
	content := body["result"].(map[string]any)["content"].([]any)[0].(map[string]any)
	if content["text"] != `{"channel":{"total":0}}` {
		t.Errorf("Expected relayed body, got %v", content["text"])
	}

	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	req.Header.Set(session.HeaderName, sessionID)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 on delete, got %d", delResp.StatusCode)
	}

	resp = post(t, url, sessionID, accept, `{"jsonrpc":"2.0","id":4,"method":"ping"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for a deleted session, got %d", resp.StatusCode)
	}
}

func TestHTTP_EventStreamFraming(t *testing.T) {
	srv, _ := newHTTPTestServer(t, false)

	resp := post(t, srv.URL+"/mcp", "", "text/event-stream", `{"jsonrpc":"2.0","id":"p","method":"ping"}`)
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected text/event-stream, got %s", ct)
	}

	reader := bufio.NewReader(resp.Body)
	event, _ := reader.ReadString('\n')
	data, _ := reader.ReadString('\n')
	if event != "event: message\n" {
		t.Errorf("Unexpected event line %q", event)
	}
	if data != "data: {\"jsonrpc\":\"2.0\",\"id\":\"p\",\"result\":{}}\n" {
		t.Errorf("Unexpected data line %q", data)
	}
}

func TestHTTP_SessionOptional(t *testing.T) {
	srv, _ := newHTTPTestServer(t, false)

	resp := post(t, srv.URL+"/mcp", "", "", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 without a required session, got %d", resp.StatusCode)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	srv, _ := newHTTPTestServer(t, false)
	url := srv.URL + "/mcp"

	tests := []struct {
		name   string
		body   string
		status int
		code   float64
	}{
		{"malformed json", `{"jsonrpc":`, http.StatusBadRequest, -32700},
		{"batch", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, http.StatusBadRequest, -32600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, url, "", "", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			body := decodeBody(t, resp)
			if body["error"].(map[string]any)["code"] != tt.code {
				t.Errorf("Expected code %v, got %v", tt.code, body["error"])
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	req.Header.Set(ProtocolVersionHeader, "1999-01-01")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unsupported protocol version header, got %d", resp.StatusCode)
	}

	resp, err = http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", resp.StatusCode)
	}
}

func TestWantsEventStream(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", false},
		{"application/json", false},
		{"application/json, text/event-stream", false},
		{"text/event-stream", true},
		{"text/event-stream;q=1.0", true},
		{"*/*", false},
	}

	for _, tt := range tests {
		if got := wantsEventStream(tt.accept); got != tt.want {
			t.Errorf("wantsEventStream(%q): expected %v, got %v", tt.accept, tt.want, got)
		}
	}
}
