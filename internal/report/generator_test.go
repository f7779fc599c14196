package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

func testReportConfig() config.ReportConfig {
	return config.ReportConfig{
		EyeContactWeight: 1.0 / 3.0,
		ConfidenceWeight: 1.0 / 3.0,
		ClarityWeight:    1.0 / 3.0,

		EyeContactGood: 0.7,
		ConfidenceGood: 0.6,
		ClarityGood:    0.7,
	}
}

func TestGenerateWeightedOverall(t *testing.T) {
	agg := models.Aggregate{
		EyeContactRatio: 0.9,
		ConfidenceScore: 0.6,
		SpeechClarity:   0.3,
	}

	r := Generate(testReportConfig(), "sess-1", agg, false, time.Now())

	assert.Equal(t, "sess-1", r.SessionID)
	assert.NotEmpty(t, r.ID)
	assert.InDelta(t, 90.0, r.EyeContactPercentage, 0.01)
	assert.InDelta(t, 0.6, r.ConfidenceScore, 0.01)
	assert.InDelta(t, 0.3, r.SpeechClarity, 0.01)
	assert.InDelta(t, 60.0, r.OverallScore, 0.01)
	assert.False(t, r.TimedOut)
}

func TestGenerateZeroSampleSession(t *testing.T) {
	r := Generate(testReportConfig(), "sess-empty", models.Aggregate{}, false, time.Now())

	assert.Equal(t, 0.0, r.OverallScore)
	assert.Equal(t, 0.0, r.EyeContactPercentage)
	assert.Empty(t, r.Feedback.Strengths)
	require.Len(t, r.Feedback.Improvements, 3)
}

func TestGenerateStrongSessionScoresHigh(t *testing.T) {
	agg := models.Aggregate{
		EyeContactRatio: 0.85,
		ConfidenceScore: 0.8,
		SpeechClarity:   0.9,
	}

	r := Generate(testReportConfig(), "sess-good", agg, false, time.Now())

	assert.GreaterOrEqual(t, r.OverallScore, 80.0)
	assert.Len(t, r.Feedback.Strengths, 3)
	assert.Empty(t, r.Feedback.Improvements)
}

func TestGenerateMixedFeedback(t *testing.T) {
	agg := models.Aggregate{
		EyeContactRatio: 0.9,  // strength
		ConfidenceScore: 0.2,  // improvement
		SpeechClarity:   0.75, // strength
	}

	r := Generate(testReportConfig(), "sess-mixed", agg, false, time.Now())

	assert.Len(t, r.Feedback.Strengths, 2)
	require.Len(t, r.Feedback.Improvements, 1)
	assert.Contains(t, r.Feedback.Improvements[0], "confidence")
}

func TestGenerateNonUniformWeights(t *testing.T) {
	cfg := testReportConfig()
	cfg.EyeContactWeight = 0.5
	cfg.ConfidenceWeight = 0.25
	cfg.ClarityWeight = 0.25

	agg := models.Aggregate{
		EyeContactRatio: 1.0,
		ConfidenceScore: 0.0,
		SpeechClarity:   0.0,
	}

	r := Generate(cfg, "sess-w", agg, false, time.Now())
	assert.InDelta(t, 50.0, r.OverallScore, 0.01)
}

func TestGenerateTimedOutFlag(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r := Generate(testReportConfig(), "sess-t", models.Aggregate{}, true, now)

	assert.True(t, r.TimedOut)
	assert.Equal(t, now, r.CreatedAt)
}
