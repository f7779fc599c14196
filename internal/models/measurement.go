package models

import (
	"time"
)

// MeasurementKind distinguishes visual frames from audio utterances
type MeasurementKind string

const (
	KindVisual MeasurementKind = "visual"
	KindAudio  MeasurementKind = "audio"
)

// MeasurementRecord is one timestamped sample from an external inference
// producer. Records are consumed exactly once by ingest and never retained;
// the aggregate is the system of record.
type MeasurementRecord struct {
	SessionID string          `json:"session_id"`
	Kind      MeasurementKind `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Visual    *VisualPayload  `json:"visual,omitempty"`
	Audio     *AudioPayload   `json:"audio,omitempty"`
}

// VisualPayload carries per-frame visual measurements. A producer that
// failed to find a face reports FaceDetected=false rather than an error.
type VisualPayload struct {
	FaceDetected  bool               `json:"face_detected"`
	LandmarkCount int                `json:"landmark_count"`
	EyeContact    bool               `json:"eye_contact"`
	Confidence    float64            `json:"confidence"`
	EmotionScores map[string]float64 `json:"emotion_scores,omitempty"`
}

// AudioPayload carries per-utterance audio measurements
type AudioPayload struct {
	ClarityScore    float64 `json:"clarity_score"`
	FillerWordCount int     `json:"filler_word_count"`
}

// Validate checks structural validity of a record. Out-of-range scores are
// not rejected here; the aggregator clamps them, since upstream producers
// are not fully trusted.
func (r *MeasurementRecord) Validate() error {
	switch r.Kind {
	case KindVisual:
		if r.Visual == nil {
			return ErrInvalidInput
		}
		if r.Visual.LandmarkCount < 0 {
			return ErrInvalidInput
		}
	case KindAudio:
		if r.Audio == nil {
			return ErrInvalidInput
		}
		if r.Audio.FillerWordCount < 0 {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	return nil
}
