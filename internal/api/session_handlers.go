package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/session"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.CandidateName == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "candidate_name is required")
		return
	}

	questions := req.Questions
	if len(questions) == 0 && req.QuestionSet != "" {
		set := s.questionSets.Get(req.QuestionSet)
		if set == nil {
			respondError(w, http.StatusNotFound, "not_found", "question set not found")
			return
		}
		questions = set.Questions
	}

	m, err := s.registry.Start(r.Context(), req.CandidateName, questions)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid_input", "questions must not be empty")
			return
		}
		slog.Error("failed to start session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to start session")
		return
	}

	summary := m.Summary()
	respondJSON(w, http.StatusCreated, models.StartSessionResponse{
		SessionID:     summary.ID,
		CandidateName: summary.CandidateName,
		Status:        summary.Status,
		QuestionCount: summary.QuestionCount,
		StartTime:     summary.StartTime,
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var rec models.MeasurementRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	rec.SessionID = m.ID()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	resp, err := m.Ingest(r.Context(), &rec)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid_input", "malformed measurement record")
			return
		}
		slog.Error("failed to ingest measurement", "error", err, "id", m.ID())
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to ingest measurement")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, "pause", (*session.Machine).Pause)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, "resume", (*session.Machine).Resume)
}

func (s *Server) handleToggle(
	w http.ResponseWriter,
	r *http.Request,
	verb string,
	op func(*session.Machine, context.Context) error,
) {
	m, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	if err := op(m, r.Context()); err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			respondError(w, http.StatusConflict, "invalid_state", "cannot "+verb+" session in its current state")
			return
		}
		slog.Error("failed to "+verb+" session", "error", err, "id", m.ID())
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to "+verb+" session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": string(m.Status()),
	})
}

func (s *Server) handleAdvanceQuestion(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req models.AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := m.Advance(r.Context(), req.Delta)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			respondError(w, http.StatusConflict, "invalid_state", "questions can only move while the session is active")
			return
		}
		slog.Error("failed to advance question", "error", err, "id", m.ID())
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to advance question")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	rep, err := m.End(r.Context(), false)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			respondError(w, http.StatusConflict, "invalid_state", "session cannot be ended in its current state")
			return
		}
		slog.Error("failed to end session", "error", err, "id", m.ID())
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to end session")
		return
	}

	// Observers get a closed channel instead of a silent stall.
	s.hub.Close(m.ID())

	respondJSON(w, http.StatusOK, rep)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "session id is required")
		return
	}

	// Live sessions come from the registry; evicted ones from storage.
	if m, err := s.registry.Get(id); err == nil {
		respondJSON(w, http.StatusOK, m.Summary())
		return
	}

	summary, err := s.repo.GetSession(r.Context(), id)
	if err != nil {
		slog.Error("failed to get session", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get session")
		return
	}
	if summary == nil {
		respondError(w, http.StatusNotFound, "session_not_found", "session not found")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	filters := models.ListFilters{
		Status: models.SessionStatus(r.URL.Query().Get("status")),
		Limit:  50, // default
		Offset: 0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	sessions, err := s.repo.ListSessions(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list sessions")
		return
	}

	// Prefer the live view where a machine still exists.
	for i, summary := range sessions {
		if m, err := s.registry.Get(summary.ID); err == nil {
			sessions[i] = m.Summary()
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// lookupSession resolves the {id} URL parameter to a live machine,
// writing the error response itself on failure
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Machine, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "session id is required")
		return nil, false
	}

	m, err := s.registry.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", "session not found")
		return nil, false
	}

	return m, true
}
