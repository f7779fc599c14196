// Package cleanup sweeps the session registry: idle sessions are ended
// with a synthetic timed-out report, and completed sessions past their
// retention window are evicted.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/vishwajeetsingh04/interview-engine/internal/notify"
	"github.com/vishwajeetsingh04/interview-engine/internal/session"
)

// Cleaner handles periodic sweeping of the session registry
type Cleaner struct {
	registry *session.Registry
	hub      *notify.Hub

	idleTimeout time.Duration
	retention   time.Duration
	interval    time.Duration
}

// NewCleaner creates a new sweep worker
func NewCleaner(registry *session.Registry, hub *notify.Hub, idleTimeout, retention, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Cleaner{
		registry:    registry,
		hub:         hub,
		idleTimeout: idleTimeout,
		retention:   retention,
		interval:    interval,
	}
}

// Start begins the sweep worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("session sweeper started",
		"interval", c.interval,
		"idle_timeout", c.idleTimeout,
		"retention", c.retention,
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep ends idle sessions and evicts expired completed ones
func (c *Cleaner) sweep(ctx context.Context) {
	now := time.Now().UTC()

	for _, m := range c.registry.Idle(now.Add(-c.idleTimeout)) {
		slog.Info("ending idle session", "id", m.ID(), "idle_since", m.IdleSince())

		if _, err := m.End(ctx, true); err != nil {
			slog.Error("failed to end idle session", "error", err, "id", m.ID())
			continue
		}
		c.hub.Close(m.ID())
	}

	for _, m := range c.registry.Expired(now.Add(-c.retention)) {
		c.registry.Remove(m.ID())
	}
}
