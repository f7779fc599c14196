// Package session owns the lifecycle of interview sessions. Each session
// is wrapped in a state machine that serializes all mutation of its
// aggregate and warning state behind one mutex; the registry maps session
// ids to machines and enforces creation and eviction rules.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/metrics"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/notify"
	"github.com/vishwajeetsingh04/interview-engine/internal/report"
	"github.com/vishwajeetsingh04/interview-engine/internal/storage"
	"github.com/vishwajeetsingh04/interview-engine/internal/warnings"
)

// Machine serializes access to one session's aggregate, warning list and
// lifecycle. Calls for different sessions proceed fully in parallel;
// concurrent ingest for the same session queues on the mutex, preserving
// the incremental-mean invariants.
type Machine struct {
	mu sync.Mutex

	sess models.Session
	agg  models.Aggregate

	engine    *warnings.Engine
	reportCfg config.ReportConfig
	repo      storage.Repository
	publisher notify.Publisher

	lastIngestAt time.Time
	lastWarnings []models.Warning
	report       *models.Report
}

// NewMachine creates a machine in the Created state
func NewMachine(
	id, candidateName string,
	questions []string,
	engine *warnings.Engine,
	reportCfg config.ReportConfig,
	repo storage.Repository,
	publisher notify.Publisher,
) *Machine {
	return &Machine{
		sess: models.Session{
			ID:            id,
			CandidateName: candidateName,
			Status:        models.SessionCreated,
			Questions:     questions,
		},
		engine:    engine,
		reportCfg: reportCfg,
		repo:      repo,
		publisher: publisher,
	}
}

// Start transitions Created to Active and persists the session row
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Status != models.SessionCreated {
		return fmt.Errorf("start session %s: %w", m.sess.ID, models.ErrInvalidState)
	}

	m.sess.Status = models.SessionActive
	m.sess.StartTime = time.Now().UTC()

	if err := m.repo.CreateSession(ctx, &m.sess); err != nil {
		m.sess.Status = models.SessionCreated
		return fmt.Errorf("failed to persist session: %w", err)
	}

	slog.Info("session started",
		"id", m.sess.ID,
		"candidate", m.sess.CandidateName,
		"questions", len(m.sess.Questions),
	)

	return nil
}

// Ingest applies one measurement record and returns the fresh warning
// list. Records arriving while the session is Paused or Completed are
// silently dropped and counted, never treated as errors, since producers
// may race with state changes.
func (m *Machine) Ingest(ctx context.Context, rec *models.MeasurementRecord) (*models.IngestResponse, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()

	if m.sess.Status != models.SessionActive {
		m.sess.DroppedSamples++
		resp := &models.IngestResponse{
			Dropped:  true,
			Warnings: append([]models.Warning(nil), m.lastWarnings...),
		}
		m.mu.Unlock()
		return resp, nil
	}

	now := time.Now().UTC()
	m.agg = metrics.Apply(m.agg, rec)
	m.lastWarnings = m.engine.Evaluate(m.agg, now)
	m.lastIngestAt = now

	snap := &models.Snapshot{
		SessionID: m.sess.ID,
		Aggregate: m.agg.Clone(),
		Warnings:  append([]models.Warning(nil), m.lastWarnings...),
		Timestamp: now,
	}

	resp := &models.IngestResponse{
		Snapshot: snap,
		Warnings: snap.Warnings,
	}

	m.mu.Unlock()

	// Outside the lock: broadcast is fire-and-forget and must never make
	// a concurrent ingest wait.
	m.publisher.Publish(ctx, snap)

	return resp, nil
}

// Pause transitions Active to Paused
func (m *Machine) Pause(ctx context.Context) error {
	return m.toggle(ctx, models.SessionActive, models.SessionPaused)
}

// Resume transitions Paused back to Active
func (m *Machine) Resume(ctx context.Context) error {
	return m.toggle(ctx, models.SessionPaused, models.SessionActive)
}

func (m *Machine) toggle(ctx context.Context, from, to models.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Status != from {
		return fmt.Errorf("session %s is %s: %w", m.sess.ID, m.sess.Status, models.ErrInvalidState)
	}

	m.sess.Status = to

	if err := m.repo.UpdateSession(ctx, &m.sess); err != nil {
		slog.Error("failed to persist session status", "error", err, "id", m.sess.ID, "status", to)
	}

	slog.Info("session status changed", "id", m.sess.ID, "status", to)
	return nil
}

// Advance moves the current question pointer by delta, clamped to
// [0, len(questions)-1]. Allowed only while Active; reports whether the
// pointer actually moved.
func (m *Machine) Advance(ctx context.Context, delta int) (*models.AdvanceResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Status != models.SessionActive {
		return nil, fmt.Errorf("session %s is %s: %w", m.sess.ID, m.sess.Status, models.ErrInvalidState)
	}

	target := m.sess.CurrentQuestion + delta
	if target < 0 {
		target = 0
	}
	if max := len(m.sess.Questions) - 1; target > max {
		target = max
	}

	moved := target != m.sess.CurrentQuestion
	if moved {
		m.sess.CurrentQuestion = target
		if err := m.repo.UpdateSession(ctx, &m.sess); err != nil {
			slog.Error("failed to persist question index", "error", err, "id", m.sess.ID)
		}
	}

	return &models.AdvanceResponse{
		Moved:           moved,
		CurrentQuestion: m.sess.CurrentQuestion,
	}, nil
}

// End transitions the session to Completed exactly once and produces the
// final report. Idempotent: a repeated call returns the already-computed
// report, because client retries after a dropped response are expected.
// timedOut marks reports synthesized by the idle sweeper.
func (m *Machine) End(ctx context.Context, timedOut bool) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Status == models.SessionCompleted {
		return m.report, nil
	}

	if m.sess.Status != models.SessionActive && m.sess.Status != models.SessionPaused {
		return nil, fmt.Errorf("session %s is %s: %w", m.sess.ID, m.sess.Status, models.ErrInvalidState)
	}

	now := time.Now().UTC()
	m.sess.Status = models.SessionCompleted
	m.sess.EndTime = &now
	m.report = report.Generate(m.reportCfg, m.sess.ID, m.agg, timedOut, now)

	if err := m.repo.UpdateSession(ctx, &m.sess); err != nil {
		slog.Error("failed to persist completed session", "error", err, "id", m.sess.ID)
	}
	if err := m.repo.SaveReport(ctx, m.report); err != nil {
		slog.Error("failed to persist report", "error", err, "id", m.sess.ID)
	}

	slog.Info("session completed",
		"id", m.sess.ID,
		"overall_score", m.report.OverallScore,
		"timed_out", timedOut,
	)

	return m.report, nil
}

// Summary returns the read-only view of the session
func (m *Machine) Summary() *models.SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &models.SessionSummary{
		ID:              m.sess.ID,
		CandidateName:   m.sess.CandidateName,
		Status:          m.sess.Status,
		StartTime:       m.sess.StartTime,
		EndTime:         m.sess.EndTime,
		CurrentQuestion: m.sess.CurrentQuestion,
		QuestionCount:   len(m.sess.Questions),
		DroppedSamples:  m.sess.DroppedSamples,
		Report:          m.report,
	}
	if !m.lastIngestAt.IsZero() {
		t := m.lastIngestAt
		s.LastIngestAt = &t
	}
	return s
}

// ID returns the session id
func (m *Machine) ID() string {
	return m.sess.ID
}

// Status returns the current lifecycle state
func (m *Machine) Status() models.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Status
}

// IdleSince returns the last moment the session saw a measurement, or its
// start time if it never did. The sweeper uses this for idle eviction.
func (m *Machine) IdleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastIngestAt.IsZero() {
		return m.sess.StartTime
	}
	return m.lastIngestAt
}

// CompletedAt returns the end time for completed sessions, nil otherwise
func (m *Machine) CompletedAt() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.EndTime
}
