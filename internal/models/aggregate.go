package models

import "time"

// LastVisual records the most recent visual sample's flags. The warning
// engine's detection checks key off the latest sample, not the running
// means.
type LastVisual struct {
	FaceDetected bool      `json:"face_detected"`
	EyeContact   bool      `json:"eye_contact"`
	Timestamp    time.Time `json:"timestamp"`
}

// Aggregate holds the running, session-lifetime summary statistics derived
// from all records ingested so far. Every ratio and score stays within
// [0,1]; counts are monotonically non-decreasing while the session is
// active.
type Aggregate struct {
	FaceDetectedRatio float64            `json:"face_detected_ratio"`
	EyeContactRatio   float64            `json:"eye_contact_ratio"`
	ConfidenceScore   float64            `json:"confidence_score"`
	SpeechClarity     float64            `json:"speech_clarity"`
	EmotionAverages   map[string]float64 `json:"emotion_averages,omitempty"`

	VisualSamples int64 `json:"visual_samples"`
	AudioSamples  int64 `json:"audio_samples"`

	FillerWords      int64   `json:"filler_words"`
	AvgLandmarkCount float64 `json:"avg_landmark_count"`

	Last *LastVisual `json:"last_visual,omitempty"`
}

// Clone returns a deep copy so snapshots never alias live engine state
func (a Aggregate) Clone() Aggregate {
	out := a
	if a.EmotionAverages != nil {
		out.EmotionAverages = make(map[string]float64, len(a.EmotionAverages))
		for k, v := range a.EmotionAverages {
			out.EmotionAverages[k] = v
		}
	}
	if a.Last != nil {
		last := *a.Last
		out.Last = &last
	}
	return out
}
