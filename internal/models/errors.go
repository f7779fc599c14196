package models

import "errors"

// Engine error taxonomy. All three are surfaced synchronously to the
// caller; producer failures (no face, inference timeouts) are measurement
// outcomes, not errors.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidState    = errors.New("operation not permitted in current session state")
	ErrSessionNotFound = errors.New("session not found")
)
