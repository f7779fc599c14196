package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"time":            time.Now().UTC().Format(time.RFC3339),
		"active_sessions": s.registry.Len(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "database not reachable")
		return
	}

	if s.redis != nil {
		if err := s.redis.HealthCheck(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "not_ready", "redis not reachable")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Question set handlers

func (s *Server) handleListQuestionSets(w http.ResponseWriter, r *http.Request) {
	sets := s.questionSets.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"question_sets": sets,
		"total":         len(sets),
	})
}

func (s *Server) handleGetQuestionSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "question set id is required")
		return
	}

	set := s.questionSets.Get(id)
	if set == nil {
		respondError(w, http.StatusNotFound, "not_found", "question set not found")
		return
	}

	respondJSON(w, http.StatusOK, set)
}
