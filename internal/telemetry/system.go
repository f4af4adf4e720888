package telemetry

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SystemMetricsCollector samples goroutine count and heap usage on a ticker.
type SystemMetricsCollector struct {
	metrics  *Metrics
	logger   zerolog.Logger
	interval time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewSystemMetricsCollector creates a collector. Call Start to begin sampling.
func NewSystemMetricsCollector(metrics *Metrics, logger zerolog.Logger, interval time.Duration) *SystemMetricsCollector {
	return &SystemMetricsCollector{
		metrics:  metrics,
		logger:   logger.With().Str("component", "system_metrics").Logger(),
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start samples once immediately and then on every tick until ctx is done or
// Stop is called. It blocks.
func (c *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Debug().
		Dur("interval", c.interval).
		Msg("Starting system metrics collection")

	c.collect()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// Stop ends collection. It is safe to call more than once.
func (c *SystemMetricsCollector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *SystemMetricsCollector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	goroutines := runtime.NumGoroutine()

	c.metrics.UpdateSystemMetrics(goroutines, m.Alloc)
}
