package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"stdict-mcp/internal/tools"
)

// ToolRegistryWrapper records a metric for every tool call.
type ToolRegistryWrapper struct {
	*tools.Registry
	metrics *Metrics
}

// NewToolRegistryWrapper wraps registry.
func NewToolRegistryWrapper(registry *tools.Registry, metrics *Metrics) *ToolRegistryWrapper {
	return &ToolRegistryWrapper{
		Registry: registry,
		metrics:  metrics,
	}
}

// Call dispatches to the registry and records status and duration.
func (w *ToolRegistryWrapper) Call(ctx context.Context, name string, args json.RawMessage) ([]byte, error) {
	start := time.Now()
	result, err := w.Registry.Call(ctx, name, args)

	status := "success"
	if err != nil {
		status = "error"
	}
	w.metrics.RecordToolExecution(name, status, time.Since(start))

	return result, err
}
