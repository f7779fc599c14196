// Package warnings derives the prioritized live warning feed from the
// current aggregate. The engine is stateless: every Evaluate call produces
// a fresh, complete list, and display decay is left to the consumer.
package warnings

import (
	"sort"
	"time"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

// NegativeEmotions is the fixed set checked against the average threshold
var NegativeEmotions = []string{"angry", "sad", "fear", "disgust"}

const (
	priorityPerformanceError = 3
	priorityPerformanceWarn  = 4
)

// Engine evaluates an aggregate against the configured rule set
type Engine struct {
	cfg config.EngineConfig
}

// NewEngine creates a warning engine with the given thresholds
func NewEngine(cfg config.EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate produces the full ordered warning list for the aggregate.
// It never fails; a session with zero samples yields the no-face error,
// since absence of face-detected data is treated as face not detected.
//
// Detection checks re-run every cycle: a face dropout mid-session
// re-raises the priority-1 error even after detection once succeeded.
func (e *Engine) Evaluate(agg models.Aggregate, now time.Time) []models.Warning {
	// Check 1: no face in the latest sample suppresses everything else.
	if agg.Last == nil || !agg.Last.FaceDetected {
		return []models.Warning{{
			Type:      models.WarningError,
			Message:   "No face detected - please position yourself in front of the camera",
			Icon:      "face-off",
			Priority:  e.cfg.NoFacePriority,
			Category:  models.CategoryDetection,
			CreatedAt: now,
		}}
	}

	// Check 2: eyes never yet established this session.
	if !agg.Last.EyeContact && agg.EyeContactRatio == 0 {
		return []models.Warning{{
			Type:      models.WarningError,
			Message:   "Eyes not visible - make sure your eyes are open and facing the camera",
			Icon:      "eye-off",
			Priority:  e.cfg.EyesNotVisiblePriority,
			Category:  models.CategoryDetection,
			CreatedAt: now,
		}}
	}

	out := []models.Warning{{
		Type:      models.WarningSuccess,
		Message:   "Face and eyes detected",
		Icon:      "face-ok",
		Priority:  0,
		Category:  models.CategoryDetection,
		CreatedAt: now,
	}}

	out = append(out, e.checkLevel(agg.EyeContactRatio, e.cfg.EyeContactLow, e.cfg.EyeContactWarn,
		"Low eye contact - try looking at the camera more often",
		"Eye contact could be better - keep your gaze on the camera",
		"Good eye contact", "eye", now))

	out = append(out, e.checkLevel(agg.ConfidenceScore, e.cfg.ConfidenceLow, e.cfg.ConfidenceWarn,
		"Low confidence detected - sit up straight and steady your posture",
		"Confidence could be better - relax and settle into your answers",
		"Confident posture", "posture", now))

	out = append(out, e.checkLevel(agg.SpeechClarity, e.cfg.ClarityLow, e.cfg.ClarityWarn,
		"Speech is hard to follow - slow down and articulate clearly",
		"Speech clarity could be better - watch out for filler words",
		"Clear speech", "mic", now))

	out = append(out, e.checkEmotions(agg, now)...)

	// Ascending by priority, success entries first. Stable so insertion
	// order breaks ties deterministically.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})

	return out
}

// checkLevel grades one performance metric against its error and warning
// thresholds
func (e *Engine) checkLevel(value, low, warn float64, errMsg, warnMsg, okMsg, icon string, now time.Time) models.Warning {
	w := models.Warning{
		Icon:      icon,
		Category:  models.CategoryPerformance,
		CreatedAt: now,
	}
	switch {
	case value < low:
		w.Type = models.WarningError
		w.Message = errMsg
		w.Priority = priorityPerformanceError
	case value < warn:
		w.Type = models.WarningWarn
		w.Message = warnMsg
		w.Priority = priorityPerformanceWarn
	default:
		w.Type = models.WarningSuccess
		w.Message = okMsg
		w.Priority = 0
	}
	return w
}

func (e *Engine) checkEmotions(agg models.Aggregate, now time.Time) []models.Warning {
	var flagged []models.Warning
	for _, emotion := range NegativeEmotions {
		if avg, ok := agg.EmotionAverages[emotion]; ok && avg > e.cfg.NegativeEmotionThreshold {
			flagged = append(flagged, models.Warning{
				Type:      models.WarningWarn,
				Message:   "Frequent " + emotion + " expression - try to stay relaxed",
				Icon:      "emotion",
				Priority:  priorityPerformanceWarn,
				Category:  models.CategoryEmotion,
				CreatedAt: now,
			})
		}
	}

	if len(flagged) == 0 {
		return []models.Warning{{
			Type:      models.WarningSuccess,
			Message:   "Emotional expression looks balanced",
			Icon:      "emotion",
			Priority:  0,
			Category:  models.CategoryEmotion,
			CreatedAt: now,
		}}
	}
	return flagged
}

// Fresh filters a warning list down to entries younger than the display
// window. Decay is a presentation concern: the engine recomputes the full
// list every cycle and never mutates old entries.
func Fresh(list []models.Warning, now time.Time, window time.Duration) []models.Warning {
	out := make([]models.Warning, 0, len(list))
	for _, w := range list {
		if now.Sub(w.CreatedAt) <= window {
			out = append(out, w)
		}
	}
	return out
}
