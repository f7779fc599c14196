package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/warnings"
)

func testEngine() *warnings.Engine {
	return warnings.NewEngine(config.EngineConfig{
		NoFacePriority:         1,
		EyesNotVisiblePriority: 2,
		EyeContactLow:          0.3,
		EyeContactWarn:         0.5,
		ConfidenceLow:          0.4,
		ConfidenceWarn:         0.6,
		ClarityLow:             0.6,
		ClarityWarn:            0.8,

		NegativeEmotionThreshold: 0.5,

		DisplayWindow: 5 * time.Second,
	})
}

func testReportConfig() config.ReportConfig {
	return config.ReportConfig{
		EyeContactWeight: 1.0 / 3.0,
		ConfidenceWeight: 1.0 / 3.0,
		ClarityWeight:    1.0 / 3.0,

		EyeContactGood: 0.7,
		ConfidenceGood: 0.6,
		ClarityGood:    0.7,
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(testEngine(), testReportConfig(), newFakeRepository(), nopPublisher{})
}

func TestRegistryStart(t *testing.T) {
	r := newTestRegistry()

	m, err := r.Start(context.Background(), "Alex", []string{"q1", "q2"})
	require.NoError(t, err)

	assert.Len(t, m.ID(), 32)
	assert.Equal(t, models.SessionActive, m.Status())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryStartValidation(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	_, err := r.Start(ctx, "Alex", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = r.Start(ctx, "", []string{"q1"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	assert.Equal(t, 0, r.Len())
}

func TestRegistryStartGeneratesDistinctIDs(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		m, err := r.Start(ctx, "Alex", []string{"q1"})
		require.NoError(t, err)
		assert.False(t, seen[m.ID()], "duplicate session id %s", m.ID())
		seen[m.ID()] = true
	}
}

func TestRegistryGet(t *testing.T) {
	r := newTestRegistry()

	m, err := r.Start(context.Background(), "Alex", []string{"q1"})
	require.NoError(t, err)

	got, err := r.Get(m.ID())
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = r.Get("no-such-session")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestRegistryRemove(t *testing.T) {
	r := newTestRegistry()

	m, err := r.Start(context.Background(), "Alex", []string{"q1"})
	require.NoError(t, err)

	r.Remove(m.ID())
	_, err = r.Get(m.ID())
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	// Removing twice is harmless.
	r.Remove(m.ID())
}

func TestRegistryIdle(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	stale, err := r.Start(ctx, "Stale", []string{"q1"})
	require.NoError(t, err)

	fresh, err := r.Start(ctx, "Fresh", []string{"q1"})
	require.NoError(t, err)
	_, err = fresh.Ingest(ctx, goodVisual())
	require.NoError(t, err)

	done, err := r.Start(ctx, "Done", []string{"q1"})
	require.NoError(t, err)
	_, err = done.End(ctx, false)
	require.NoError(t, err)

	// A cutoff in the future makes every non-terminal session idle;
	// completed sessions never show up regardless.
	idle := r.Idle(time.Now().Add(time.Minute))
	ids := make(map[string]bool)
	for _, m := range idle {
		ids[m.ID()] = true
	}
	assert.True(t, ids[stale.ID()])
	assert.True(t, ids[fresh.ID()])
	assert.False(t, ids[done.ID()])

	// A cutoff in the past matches nothing.
	assert.Empty(t, r.Idle(time.Now().Add(-time.Minute)))
}

func TestRegistryExpired(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	live, err := r.Start(ctx, "Live", []string{"q1"})
	require.NoError(t, err)

	done, err := r.Start(ctx, "Done", []string{"q1"})
	require.NoError(t, err)
	_, err = done.End(ctx, false)
	require.NoError(t, err)

	expired := r.Expired(time.Now().Add(time.Minute))
	require.Len(t, expired, 1)
	assert.Equal(t, done.ID(), expired[0].ID())
	assert.NotEqual(t, live.ID(), expired[0].ID())

	assert.Empty(t, r.Expired(time.Now().Add(-time.Minute)))
}
