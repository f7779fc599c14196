// Package report turns a session's final aggregate into the persisted
// end-of-session report.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

// Generate computes the final report from an aggregate. The overall score
// is a weighted average of eye contact, confidence and clarity on a 0-100
// scale; weights come from configuration and default to equal thirds.
// Feedback bullets are derived once here, not cycle-by-cycle.
func Generate(cfg config.ReportConfig, sessionID string, agg models.Aggregate, timedOut bool, now time.Time) *models.Report {
	eyePct := agg.EyeContactRatio * 100
	confPct := agg.ConfidenceScore * 100
	clarityPct := agg.SpeechClarity * 100

	overall := eyePct*cfg.EyeContactWeight +
		confPct*cfg.ConfidenceWeight +
		clarityPct*cfg.ClarityWeight

	r := &models.Report{
		ID:                   uuid.New().String(),
		SessionID:            sessionID,
		EyeContactPercentage: round2(eyePct),
		ConfidenceScore:      round2(agg.ConfidenceScore),
		SpeechClarity:        round2(agg.SpeechClarity),
		OverallScore:         round2(overall),
		Feedback:             buildFeedback(cfg, agg),
		TimedOut:             timedOut,
		CreatedAt:            now,
	}

	return r
}

func buildFeedback(cfg config.ReportConfig, agg models.Aggregate) models.Feedback {
	fb := models.Feedback{
		Strengths:    []string{},
		Improvements: []string{},
	}

	if agg.EyeContactRatio >= cfg.EyeContactGood {
		fb.Strengths = append(fb.Strengths, "Maintained strong eye contact throughout the interview")
	} else {
		fb.Improvements = append(fb.Improvements, "Work on maintaining better eye contact during interviews")
	}

	if agg.ConfidenceScore >= cfg.ConfidenceGood {
		fb.Strengths = append(fb.Strengths, "Came across as confident and composed")
	} else {
		fb.Improvements = append(fb.Improvements, "Practice to build more confidence in your responses")
	}

	if agg.SpeechClarity >= cfg.ClarityGood {
		fb.Strengths = append(fb.Strengths, "Spoke clearly and was easy to follow")
	} else {
		fb.Improvements = append(fb.Improvements, "Focus on speaking clearly and reducing filler words")
	}

	return fb
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
