package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// SessionStatus represents the current state of an interview session
type SessionStatus string

const (
	SessionCreated   SessionStatus = "created"   // allocated, not yet started
	SessionActive    SessionStatus = "active"    // ingesting measurements
	SessionPaused    SessionStatus = "paused"    // ingest dropped, resumable
	SessionCompleted SessionStatus = "completed" // terminal, report produced
)

// IsTerminal returns true if the session is in a final state
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted
}

// Session represents one interview-practice session. Each session owns
// exactly one aggregate and one live warning list, mutated only through
// its state machine.
type Session struct {
	ID              string        `json:"id"`
	CandidateName   string        `json:"candidate_name"`
	Status          SessionStatus `json:"status"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	CurrentQuestion int           `json:"current_question"`
	Questions       []string      `json:"questions"`
	DroppedSamples  int64         `json:"dropped_samples"`
}

// SessionSummary is the read-only view exposed by GetSession/ListSessions
type SessionSummary struct {
	ID              string        `json:"id"`
	CandidateName   string        `json:"candidate_name"`
	Status          SessionStatus `json:"status"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	CurrentQuestion int           `json:"current_question"`
	QuestionCount   int           `json:"question_count"`
	DroppedSamples  int64         `json:"dropped_samples"`
	LastIngestAt    *time.Time    `json:"last_ingest_at,omitempty"`
	Report          *Report       `json:"report,omitempty"`
}

// GenerateSessionID creates a cryptographically random 32-char hex id.
// Uniqueness and unguessability are the registry's responsibility, so ids
// never come from the caller.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// StartSessionRequest represents a request to start a session. Questions
// may be given inline or resolved from a named question set.
type StartSessionRequest struct {
	CandidateName string   `json:"candidate_name"`
	Questions     []string `json:"questions,omitempty"`
	QuestionSet   string   `json:"question_set,omitempty"`
}

// StartSessionResponse is returned after starting a session
type StartSessionResponse struct {
	SessionID     string        `json:"session_id"`
	CandidateName string        `json:"candidate_name"`
	Status        SessionStatus `json:"status"`
	QuestionCount int           `json:"question_count"`
	StartTime     time.Time     `json:"start_time"`
}

// AdvanceRequest moves the current question pointer by delta
type AdvanceRequest struct {
	Delta int `json:"delta"`
}

// AdvanceResponse reports whether the move occurred
type AdvanceResponse struct {
	Moved           bool `json:"moved"`
	CurrentQuestion int  `json:"current_question"`
}

// IngestResponse is returned for every accepted (or dropped) measurement
type IngestResponse struct {
	Dropped  bool       `json:"dropped"`
	Snapshot *Snapshot  `json:"snapshot,omitempty"`
	Warnings []Warning  `json:"warnings"`
}

// Snapshot is the per-ingest state pushed to subscribers: the current
// aggregate plus the fresh warning list.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Aggregate Aggregate `json:"aggregate"`
	Warnings  []Warning `json:"warnings"`
	Timestamp time.Time `json:"timestamp"`
}

// ListFilters defines filters for listing sessions
type ListFilters struct {
	Status SessionStatus
	Limit  int
	Offset int
}
