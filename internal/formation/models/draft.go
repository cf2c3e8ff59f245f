package models

import (
	"encoding/json"
	"time"
)

const (
	MinDraftStep = 1
	MaxDraftStep = 4

	MaxSessionIDLength = 255

	// DefaultDraftRetentionDays is how long an untouched draft survives cleanup.
	DefaultDraftRetentionDays = 7
)

// Draft is a resumable in-progress form keyed by an opaque session id.
// FormData is stored as the caller sent it and replaced wholesale on save.
type Draft struct {
	SessionID   string
	CurrentStep int
	FormData    json.RawMessage
	LastSavedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Touch replaces step and data for a save at now. CreatedAt is kept when the
// draft already existed.
func (d *Draft) Touch(step int, data json.RawMessage, now time.Time) {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.CurrentStep = step
	d.FormData = data
	d.LastSavedAt = now
	d.UpdatedAt = now
}
