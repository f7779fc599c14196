// Package notify broadcasts per-session snapshots to observers. The
// publisher must never block ingestion: a slow or disconnected observer
// loses messages instead of stalling the pipeline.
package notify

import (
	"context"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

// Publisher pushes a snapshot to everyone observing a session
type Publisher interface {
	Publish(ctx context.Context, snap *models.Snapshot)
}

// Multi fans out to several publishers
type Multi []Publisher

// Publish sends the snapshot through every publisher
func (m Multi) Publish(ctx context.Context, snap *models.Snapshot) {
	for _, p := range m {
		p.Publish(ctx, snap)
	}
}
