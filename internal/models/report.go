package models

import "time"

// Feedback splits finalize-time bullets into strengths and improvements
type Feedback struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Report is the immutable, final scored summary produced exactly once when
// a session completes. Percentage fields are in [0,100]; OverallScore is a
// weighted combination of the three component scores.
type Report struct {
	ID                   string    `json:"id"`
	SessionID            string    `json:"session_id"`
	EyeContactPercentage float64   `json:"eye_contact_percentage"`
	ConfidenceScore      float64   `json:"confidence_score"`
	SpeechClarity        float64   `json:"speech_clarity"`
	OverallScore         float64   `json:"overall_score"`
	Feedback             Feedback  `json:"feedback"`
	TimedOut             bool      `json:"timed_out"`
	CreatedAt            time.Time `json:"created_at"`
}
