package storage

import (
	"context"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

// Repository defines the interface for session persistence. Sessions are
// written through on every lifecycle change; the final report is embedded
// into the session row at completion. Raw measurements are never stored.
type Repository interface {
	// Sessions
	CreateSession(ctx context.Context, s *models.Session) error
	UpdateSession(ctx context.Context, s *models.Session) error
	SaveReport(ctx context.Context, r *models.Report) error
	GetSession(ctx context.Context, id string) (*models.SessionSummary, error)
	ListSessions(ctx context.Context, filters models.ListFilters) ([]*models.SessionSummary, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
