package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := GenerateSessionID()
		require.NoError(t, err)
		assert.Len(t, id, 32)
		assert.Regexp(t, "^[0-9a-f]{32}$", id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSessionStatusIsTerminal(t *testing.T) {
	assert.False(t, SessionCreated.IsTerminal())
	assert.False(t, SessionActive.IsTerminal())
	assert.False(t, SessionPaused.IsTerminal())
	assert.True(t, SessionCompleted.IsTerminal())
}

func TestMeasurementRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     MeasurementRecord
		wantErr bool
	}{
		{
			name: "valid visual",
			rec: MeasurementRecord{
				Kind:   KindVisual,
				Visual: &VisualPayload{FaceDetected: true, LandmarkCount: 68},
			},
		},
		{
			name: "valid audio",
			rec: MeasurementRecord{
				Kind:  KindAudio,
				Audio: &AudioPayload{ClarityScore: 0.8},
			},
		},
		{
			name:    "visual without payload",
			rec:     MeasurementRecord{Kind: KindVisual},
			wantErr: true,
		},
		{
			name:    "audio without payload",
			rec:     MeasurementRecord{Kind: KindAudio},
			wantErr: true,
		},
		{
			name: "negative landmarks",
			rec: MeasurementRecord{
				Kind:   KindVisual,
				Visual: &VisualPayload{LandmarkCount: -1},
			},
			wantErr: true,
		},
		{
			name: "negative filler count",
			rec: MeasurementRecord{
				Kind:  KindAudio,
				Audio: &AudioPayload{FillerWordCount: -1},
			},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			rec:     MeasurementRecord{Kind: "thermal"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAggregateCloneIsDeep(t *testing.T) {
	orig := Aggregate{
		EmotionAverages: map[string]float64{"happy": 0.8},
		Last:            &LastVisual{FaceDetected: true, Timestamp: time.Now()},
	}

	clone := orig.Clone()
	clone.EmotionAverages["happy"] = 0.1
	clone.Last.FaceDetected = false

	assert.Equal(t, 0.8, orig.EmotionAverages["happy"])
	assert.True(t, orig.Last.FaceDetected)
}

func TestApiClientHasPermission(t *testing.T) {
	client := &ApiClient{
		IsActive:    true,
		Permissions: []string{"sessions:read", "questions:*"},
	}

	assert.True(t, client.HasPermission("sessions:read"))
	assert.False(t, client.HasPermission("sessions:write"))
	assert.True(t, client.HasPermission("questions:read"))
	assert.True(t, client.HasPermission("questions:anything"))

	inactive := &ApiClient{IsActive: false, Permissions: []string{"*"}}
	assert.False(t, inactive.HasPermission("sessions:read"))

	wildcard := &ApiClient{IsActive: true, Permissions: []string{"*"}}
	assert.True(t, wildcard.HasPermission("sessions:write"))

	var nilClient *ApiClient
	assert.False(t, nilClient.HasPermission("sessions:read"))
}

func TestApiClientMaskedApiKey(t *testing.T) {
	c := &ApiClient{ApiKey: "ik_0123456789abcdef"}
	assert.Equal(t, "ik_01234...", c.MaskedApiKey())

	short := &ApiClient{ApiKey: "abc"}
	assert.Equal(t, "***", short.MaskedApiKey())
}
