package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// cleanupTimeout bounds a single sweep.
const cleanupTimeout = 30 * time.Second

// CleanupConfig configures CleanupService.
type CleanupConfig struct {
	CleanupInterval time.Duration
}

// CleanupService periodically removes expired sessions.
type CleanupService struct {
	manager  Manager
	interval time.Duration
	logger   zerolog.Logger

	mutex     sync.Mutex
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewCleanupService creates a stopped cleanup service.
func NewCleanupService(manager Manager, config CleanupConfig, logger zerolog.Logger) *CleanupService {
	return &CleanupService{
		manager:  manager,
		interval: config.CleanupInterval,
		logger:   logger.With().Str("component", "cleanup_service").Logger(),
	}
}

// Start runs the sweep loop in a goroutine until Stop is called or ctx is
// done. Starting a running service is a no-op.
func (c *CleanupService) Start(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.running {
		return nil
	}

	c.logger.Info().
		Dur("interval", c.interval).
		Msg("Starting session cleanup service")

	c.running = true
	c.stopCh = make(chan struct{})
	c.stoppedCh = make(chan struct{})
	go c.run(ctx, c.stopCh, c.stoppedCh)

	return nil
}

// Stop signals the loop and waits for it to exit.
func (c *CleanupService) Stop() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.running {
		return nil
	}

	close(c.stopCh)
	<-c.stoppedCh
	c.running = false

	c.logger.Info().Msg("Session cleanup service stopped")
	return nil
}

// IsRunning reports whether the loop has been started and not stopped.
func (c *CleanupService) IsRunning() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.running
}

// RunOnce performs a single sweep.
func (c *CleanupService) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	deleted, err := c.manager.CleanupExpiredSessions(ctx)
	if err != nil {
		c.logger.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Session cleanup failed")
		return 0, err
	}

	c.logger.Debug().
		Int("deleted_count", deleted).
		Dur("duration", time.Since(start)).
		Msg("Session cleanup completed")
	return deleted, nil
}

func (c *CleanupService) run(ctx context.Context, stopCh <-chan struct{}, stoppedCh chan<- struct{}) {
	defer close(stoppedCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
			c.RunOnce(sweepCtx)
			cancel()
		}
	}
}
