// Package metrics maintains running session-level statistics from a
// sequence of measurement records. Updates are pure functions: the caller
// passes an aggregate value and receives the next one, so the state
// machine alone decides when state actually advances.
package metrics

import (
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

// Apply folds one measurement record into the aggregate and returns the
// updated value. It is total: malformed scores are clamped into [0,1]
// rather than rejected, since upstream producers are not fully trusted.
func Apply(agg models.Aggregate, rec *models.MeasurementRecord) models.Aggregate {
	switch rec.Kind {
	case models.KindVisual:
		if rec.Visual != nil {
			applyVisual(&agg, rec)
		}
	case models.KindAudio:
		if rec.Audio != nil {
			applyAudio(&agg, rec)
		}
	}
	return agg
}

func applyVisual(agg *models.Aggregate, rec *models.MeasurementRecord) {
	v := rec.Visual
	n := agg.VisualSamples

	agg.FaceDetectedRatio = incrementalMean(agg.FaceDetectedRatio, boolToFloat(v.FaceDetected), n)
	agg.EyeContactRatio = incrementalMean(agg.EyeContactRatio, boolToFloat(v.EyeContact), n)
	agg.ConfidenceScore = incrementalMean(agg.ConfidenceScore, Clamp01(v.Confidence), n)

	landmarks := v.LandmarkCount
	if landmarks < 0 {
		landmarks = 0
	}
	agg.AvgLandmarkCount = incrementalMean(agg.AvgLandmarkCount, float64(landmarks), n)

	if len(v.EmotionScores) > 0 && agg.EmotionAverages == nil {
		agg.EmotionAverages = make(map[string]float64, len(v.EmotionScores))
	}
	for emotion, score := range v.EmotionScores {
		score = Clamp01(score)
		if prev, seen := agg.EmotionAverages[emotion]; seen {
			// Unseen keys start at the incoming value, so each emotion
			// averages only over the samples that reported it.
			agg.EmotionAverages[emotion] = incrementalMean(prev, score, n)
		} else {
			agg.EmotionAverages[emotion] = score
		}
	}

	agg.VisualSamples = n + 1
	agg.Last = &models.LastVisual{
		FaceDetected: v.FaceDetected,
		EyeContact:   v.EyeContact,
		Timestamp:    rec.Timestamp,
	}
}

func applyAudio(agg *models.Aggregate, rec *models.MeasurementRecord) {
	a := rec.Audio
	n := agg.AudioSamples

	agg.SpeechClarity = incrementalMean(agg.SpeechClarity, Clamp01(a.ClarityScore), n)
	if a.FillerWordCount > 0 {
		agg.FillerWords += int64(a.FillerWordCount)
	}
	agg.AudioSamples = n + 1
}

// incrementalMean folds value into a running mean over count samples.
// Cumulative for the session lifetime; no windowing or decay.
func incrementalMean(mean, value float64, count int64) float64 {
	return mean + (value-mean)/float64(count+1)
}

// Clamp01 bounds a score into [0,1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
