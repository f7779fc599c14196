package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/notify"
	"github.com/vishwajeetsingh04/interview-engine/internal/storage"
	"github.com/vishwajeetsingh04/interview-engine/internal/warnings"
)

// Registry is the process-wide table of live sessions. It is the only
// shared mutable resource across sessions; all per-session mutation goes
// through the machines it hands out.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Machine

	engine    *warnings.Engine
	reportCfg config.ReportConfig
	repo      storage.Repository
	publisher notify.Publisher
}

// NewRegistry creates an empty session registry
func NewRegistry(
	engine *warnings.Engine,
	reportCfg config.ReportConfig,
	repo storage.Repository,
	publisher notify.Publisher,
) *Registry {
	return &Registry{
		sessions:  make(map[string]*Machine),
		engine:    engine,
		reportCfg: reportCfg,
		repo:      repo,
		publisher: publisher,
	}
}

// Start creates and activates a new session. Concurrent starts for the
// same candidate are permitted; every call yields a distinct opaque id.
func (r *Registry) Start(ctx context.Context, candidateName string, questions []string) (*Machine, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("questions must not be empty: %w", models.ErrInvalidInput)
	}
	if candidateName == "" {
		return nil, fmt.Errorf("candidate name is required: %w", models.ErrInvalidInput)
	}

	id, err := models.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	m := NewMachine(id, candidateName, questions, r.engine, r.reportCfg, r.repo, r.publisher)

	if err := m.Start(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[id] = m
	r.mu.Unlock()

	return m, nil
}

// Get retrieves a live session machine by id
func (r *Registry) Get(id string) (*Machine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrSessionNotFound)
	}
	return m, nil
}

// List returns all live session machines
func (r *Registry) List() []*Machine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Machine, 0, len(r.sessions))
	for _, m := range r.sessions {
		out = append(out, m)
	}
	return out
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Idle returns sessions with no ingest since the cutoff that are still
// eligible for measurement (Active or Paused). The sweeper force-ends
// these with a synthetic timed-out report; idle sessions are never
// silently dropped.
func (r *Registry) Idle(cutoff time.Time) []*Machine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var idle []*Machine
	for _, m := range r.sessions {
		if m.Status().IsTerminal() {
			continue
		}
		if m.IdleSince().Before(cutoff) {
			idle = append(idle, m)
		}
	}
	return idle
}

// Expired returns completed sessions whose retention window has elapsed
func (r *Registry) Expired(cutoff time.Time) []*Machine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []*Machine
	for _, m := range r.sessions {
		if !m.Status().IsTerminal() {
			continue
		}
		if end := m.CompletedAt(); end != nil && end.Before(cutoff) {
			expired = append(expired, m)
		}
	}
	return expired
}

// Remove evicts a session from the registry. The persisted row remains;
// only the in-memory machine goes away.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		slog.Info("session evicted from registry", "id", id)
	}
}
