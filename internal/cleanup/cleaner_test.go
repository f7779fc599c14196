package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/notify"
	"github.com/vishwajeetsingh04/interview-engine/internal/session"
	"github.com/vishwajeetsingh04/interview-engine/internal/warnings"
)

type memRepository struct{}

func (memRepository) CreateSession(ctx context.Context, s *models.Session) error { return nil }
func (memRepository) UpdateSession(ctx context.Context, s *models.Session) error { return nil }
func (memRepository) SaveReport(ctx context.Context, r *models.Report) error     { return nil }
func (memRepository) GetSession(ctx context.Context, id string) (*models.SessionSummary, error) {
	return nil, nil
}
func (memRepository) ListSessions(ctx context.Context, filters models.ListFilters) ([]*models.SessionSummary, error) {
	return nil, nil
}
func (memRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	return nil, nil
}
func (memRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error { return nil }
func (memRepository) Ping(ctx context.Context) error                                { return nil }
func (memRepository) Close() error                                                  { return nil }

func newRegistry(hub *notify.Hub) *session.Registry {
	engine := warnings.NewEngine(config.EngineConfig{
		NoFacePriority:         1,
		EyesNotVisiblePriority: 2,
		EyeContactLow:          0.3,
		EyeContactWarn:         0.5,
		ConfidenceLow:          0.4,
		ConfidenceWarn:         0.6,
		ClarityLow:             0.6,
		ClarityWarn:            0.8,

		NegativeEmotionThreshold: 0.5,
	})
	reportCfg := config.ReportConfig{
		EyeContactWeight: 1.0 / 3.0,
		ConfidenceWeight: 1.0 / 3.0,
		ClarityWeight:    1.0 / 3.0,
		EyeContactGood:   0.7,
		ConfidenceGood:   0.6,
		ClarityGood:      0.7,
	}
	return session.NewRegistry(engine, reportCfg, memRepository{}, hub)
}

func TestSweepEndsIdleSessions(t *testing.T) {
	hub := notify.NewHub()
	registry := newRegistry(hub)
	ctx := context.Background()

	m, err := registry.Start(ctx, "Alex", []string{"q1"})
	require.NoError(t, err)

	sub := hub.Subscribe(m.ID())

	// Zero idle timeout: a session with no ingest is immediately idle.
	c := NewCleaner(registry, hub, 0, time.Hour, time.Minute)
	c.sweep(ctx)

	assert.Equal(t, models.SessionCompleted, m.Status())

	summary := m.Summary()
	require.NotNil(t, summary.Report)
	assert.True(t, summary.Report.TimedOut)

	// Stream observers see the channel close.
	select {
	case _, ok := <-sub.C():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed")
	}

	// The completed session stays in the registry until retention passes.
	_, err = registry.Get(m.ID())
	assert.NoError(t, err)
}

func TestSweepEvictsExpiredSessions(t *testing.T) {
	hub := notify.NewHub()
	registry := newRegistry(hub)
	ctx := context.Background()

	m, err := registry.Start(ctx, "Alex", []string{"q1"})
	require.NoError(t, err)
	_, err = m.End(ctx, false)
	require.NoError(t, err)

	// Zero retention: completed sessions are evicted on the next sweep.
	c := NewCleaner(registry, hub, time.Hour, 0, time.Minute)

	// EndTime must be strictly before the cutoff.
	time.Sleep(10 * time.Millisecond)
	c.sweep(ctx)

	_, err = registry.Get(m.ID())
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestSweepLeavesHealthySessionsAlone(t *testing.T) {
	hub := notify.NewHub()
	registry := newRegistry(hub)
	ctx := context.Background()

	m, err := registry.Start(ctx, "Alex", []string{"q1"})
	require.NoError(t, err)

	c := NewCleaner(registry, hub, time.Hour, time.Hour, time.Minute)
	c.sweep(ctx)

	assert.Equal(t, models.SessionActive, m.Status())
}
