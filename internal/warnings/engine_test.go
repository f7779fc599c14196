package warnings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwajeetsingh04/interview-engine/internal/config"
	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		NoFacePriority:         1,
		EyesNotVisiblePriority: 2,

		EyeContactLow:  0.3,
		EyeContactWarn: 0.5,
		ConfidenceLow:  0.4,
		ConfidenceWarn: 0.6,
		ClarityLow:     0.6,
		ClarityWarn:    0.8,

		NegativeEmotionThreshold: 0.5,

		DisplayWindow: 5 * time.Second,
	}
}

func goodAggregate() models.Aggregate {
	return models.Aggregate{
		FaceDetectedRatio: 1,
		EyeContactRatio:   0.9,
		ConfidenceScore:   0.8,
		SpeechClarity:     0.9,
		VisualSamples:     10,
		AudioSamples:      5,
		Last: &models.LastVisual{
			FaceDetected: true,
			EyeContact:   true,
			Timestamp:    time.Now(),
		},
	}
}

func TestEvaluateZeroSamplesYieldsNoFaceError(t *testing.T) {
	e := NewEngine(testEngineConfig())

	out := e.Evaluate(models.Aggregate{}, time.Now())

	require.Len(t, out, 1)
	assert.Equal(t, models.WarningError, out[0].Type)
	assert.Equal(t, 1, out[0].Priority)
	assert.Equal(t, models.CategoryDetection, out[0].Category)
}

func TestEvaluateNoFaceSuppressesEverything(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	agg.Last.FaceDetected = false
	// Terrible performance metrics must stay invisible behind the gate.
	agg.ConfidenceScore = 0
	agg.SpeechClarity = 0

	out := e.Evaluate(agg, time.Now())

	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Priority)
}

func TestEvaluateEyesNotYetEstablished(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	agg.Last.EyeContact = false
	agg.EyeContactRatio = 0

	out := e.Evaluate(agg, time.Now())

	require.Len(t, out, 1)
	assert.Equal(t, models.WarningError, out[0].Type)
	assert.Equal(t, 2, out[0].Priority)
}

func TestEvaluateEyesGateUnlocksAfterFirstContact(t *testing.T) {
	e := NewEngine(testEngineConfig())

	// Eye contact was established at some point, so a sample without it
	// falls through to the performance checks instead of the gate.
	agg := goodAggregate()
	agg.Last.EyeContact = false
	agg.EyeContactRatio = 0.6

	out := e.Evaluate(agg, time.Now())

	assert.Greater(t, len(out), 1)
	for _, w := range out {
		assert.NotEqual(t, 2, w.Priority)
	}
}

func TestEvaluateFaceDropoutRetriggersGate(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	out := e.Evaluate(agg, time.Now())
	assert.Greater(t, len(out), 1)

	// Face drops out mid-session; the priority-1 error comes back even
	// though detection once succeeded.
	agg.Last.FaceDetected = false
	out = e.Evaluate(agg, time.Now())
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Priority)
}

func TestEvaluateAllGoodYieldsOnlySuccesses(t *testing.T) {
	e := NewEngine(testEngineConfig())

	out := e.Evaluate(goodAggregate(), time.Now())

	// Detection + three performance checks + emotion summary.
	require.Len(t, out, 5)
	for _, w := range out {
		assert.Equal(t, models.WarningSuccess, w.Type)
		assert.Equal(t, 0, w.Priority)
	}
}

func TestEvaluatePerformanceGrading(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	agg.EyeContactRatio = 0.2 // below error threshold
	agg.ConfidenceScore = 0.5 // between thresholds
	agg.SpeechClarity = 0.9   // fine

	out := e.Evaluate(agg, time.Now())

	var errs, warns, oks int
	for _, w := range out {
		switch w.Type {
		case models.WarningError:
			errs++
		case models.WarningWarn:
			warns++
		case models.WarningSuccess:
			oks++
		}
	}
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, warns)
	assert.Equal(t, 3, oks)
}

func TestEvaluateSortedAscendingByPriority(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	agg.EyeContactRatio = 0.2
	agg.ConfidenceScore = 0.5
	agg.EmotionAverages = map[string]float64{"angry": 0.8}

	out := e.Evaluate(agg, time.Now())
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].Priority, out[i].Priority)
	}
}

func TestEvaluateNegativeEmotionWarnings(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	agg.EmotionAverages = map[string]float64{
		"angry": 0.7,
		"sad":   0.6,
		"happy": 0.9, // positive, never flagged
		"fear":  0.1, // below threshold
	}

	out := e.Evaluate(agg, time.Now())

	var emotions []models.Warning
	for _, w := range out {
		if w.Category == models.CategoryEmotion {
			emotions = append(emotions, w)
		}
	}
	require.Len(t, emotions, 2)
	for _, w := range emotions {
		assert.Equal(t, models.WarningWarn, w.Type)
	}
}

func TestEvaluateIsStateless(t *testing.T) {
	e := NewEngine(testEngineConfig())

	agg := goodAggregate()
	first := e.Evaluate(agg, time.Unix(100, 0))
	second := e.Evaluate(agg, time.Unix(100, 0))

	assert.Equal(t, first, second)
}

func TestFresh(t *testing.T) {
	now := time.Now()
	list := []models.Warning{
		{Message: "old", CreatedAt: now.Add(-10 * time.Second)},
		{Message: "recent", CreatedAt: now.Add(-2 * time.Second)},
		{Message: "now", CreatedAt: now},
	}

	out := Fresh(list, now, 5*time.Second)

	require.Len(t, out, 2)
	assert.Equal(t, "recent", out[0].Message)
	assert.Equal(t, "now", out[1].Message)
}
