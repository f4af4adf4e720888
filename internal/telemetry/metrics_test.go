package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"stdict-mcp/internal/session"
	"stdict-mcp/internal/stdict"
	"stdict-mcp/internal/tools"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func TestNewMetrics_IsolatedRegistries(t *testing.T) {
	// Two instances on separate registries must not collide.
	newTestMetrics()
	newTestMetrics()
}

func TestObserveUpstream(t *testing.T) {
	m := newTestMetrics()
	var _ stdict.Observer = m

	m.ObserveUpstream("search", stdict.OutcomeOK, 120*time.Millisecond)
	m.ObserveUpstream("search", stdict.OutcomeOK, 80*time.Millisecond)
	m.ObserveUpstream("detail", stdict.OutcomeValidationError, 0)

	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("search", "ok")); got != 2 {
		t.Errorf("Expected 2 ok searches, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("detail", "validation_error")); got != 1 {
		t.Errorf("Expected 1 detail validation error, got %v", got)
	}
	if got := testutil.CollectAndCount(m.UpstreamDuration); got != 1 {
		t.Errorf("Expected only the search endpoint to have duration samples, got %d series", got)
	}
}

type echoTool struct{ *tools.DefaultTool }

func (echoTool) Call(ctx context.Context, args json.RawMessage) ([]byte, error) {
	if string(args) == "fail" {
		return nil, errors.New("boom")
	}
	return args, nil
}

func TestToolRegistryWrapper(t *testing.T) {
	m := newTestMetrics()
	registry := tools.NewRegistry()
	registry.Register(echoTool{tools.NewDefaultTool("echo", "", "", tools.Schema{})})
	wrapper := NewToolRegistryWrapper(registry, m)

	out, err := wrapper.Call(context.Background(), "echo", json.RawMessage(`{}`))
	if err != nil || string(out) != "{}" {
		t.Fatalf("Expected passthrough, got %s, %v", out, err)
	}
	wrapper.Call(context.Background(), "echo", json.RawMessage("fail"))
	wrapper.Call(context.Background(), "missing", nil)

	if got := testutil.ToFloat64(m.MCPToolExecutions.WithLabelValues("echo", "success")); got != 1 {
		t.Errorf("Expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.MCPToolExecutions.WithLabelValues("echo", "error")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
	if got := testutil.ToFloat64(m.MCPToolExecutions.WithLabelValues("missing", "error")); got != 1 {
		t.Errorf("Expected unknown tool to count as error, got %v", got)
	}
}

func TestSessionManagerWrapper(t *testing.T) {
	m := newTestMetrics()
	logger := zerolog.Nop()
	store := session.NewMemoryStore(logger)
	defer store.Close()
	manager := session.NewDefaultSessionManager(store, session.ManagerConfig{
		SessionTimeout: time.Hour,
		OnExpire:       ExpiryRecorder(m),
	}, logger)
	wrapper := NewSessionManagerWrapper(manager, m)
	ctx := context.Background()

	a, _ := wrapper.CreateSession(ctx, "2025-06-18", session.ClientInfo{})
	b, _ := wrapper.CreateSession(ctx, "2025-06-18", session.ClientInfo{})

	if got := testutil.ToFloat64(m.MCPSessionsActive); got != 2 {
		t.Errorf("Expected 2 active sessions, got %v", got)
	}

	if err := wrapper.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	b.ExpiresAt = time.Now().Add(-time.Minute)
	store.Set(ctx, b.ID, b)
	wrapper.CleanupExpiredSessions(ctx)

	if got := testutil.ToFloat64(m.MCPSessionsActive); got != 0 {
		t.Errorf("Expected 0 active sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.MCPSessionsTotal.WithLabelValues("deleted")); got != 1 {
		t.Errorf("Expected 1 deleted, got %v", got)
	}
	if got := testutil.ToFloat64(m.MCPSessionsTotal.WithLabelValues("expired")); got != 1 {
		t.Errorf("Expected 1 expired, got %v", got)
	}
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	m := newTestMetrics()
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware(m))
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	for _, path := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "418")); got != 2 {
		t.Errorf("Expected 2 requests grouped by pattern, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsInFlight); got != 0 {
		t.Errorf("Expected no in-flight requests, got %v", got)
	}
}

func TestSystemMetricsCollector(t *testing.T) {
	m := newTestMetrics()
	collector := NewSystemMetricsCollector(m, zerolog.Nop(), time.Hour)

	done := make(chan struct{})
	go func() {
		collector.Start(context.Background())
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for testutil.ToFloat64(m.GoRoutines) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	collector.Stop()
	collector.Stop()
	<-done

	if testutil.ToFloat64(m.GoRoutines) == 0 {
		t.Error("Expected goroutine gauge to be set")
	}
	if testutil.ToFloat64(m.MemoryUsage) == 0 {
		t.Error("Expected memory gauge to be set")
	}
}
