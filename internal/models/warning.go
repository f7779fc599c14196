package models

import "time"

// WarningType classifies the severity of a warning entry
type WarningType string

const (
	WarningSuccess WarningType = "success"
	WarningWarn    WarningType = "warning"
	WarningError   WarningType = "error"
)

// WarningCategory groups warnings by the check family that produced them
type WarningCategory string

const (
	CategoryDetection   WarningCategory = "detection"
	CategoryPerformance WarningCategory = "performance"
	CategoryEmotion     WarningCategory = "emotion"
)

// Warning is one prioritized, categorized, human-readable alert derived
// from the current aggregate. Priority 0 means success/no-action; 1 is
// most critical, higher is less urgent. The icon is a display tag with no
// semantic weight.
type Warning struct {
	Type      WarningType     `json:"type"`
	Message   string          `json:"message"`
	Icon      string          `json:"icon"`
	Priority  int             `json:"priority"`
	Category  WarningCategory `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}
