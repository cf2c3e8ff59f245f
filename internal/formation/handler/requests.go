package handler

import (
	"strings"

	"formation/internal/formation/models"
	dErrors "formation/pkg/domain-errors"
)

const maxNoteLength = 2000

// TransitionRequest is the body of POST /v1/admin/company-formation/{ref}/status.
type TransitionRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (r *TransitionRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Notes = strings.TrimSpace(r.Notes)
}

// Validate implements httputil.Validatable.
func (r *TransitionRequest) Validate() error {
	fields := dErrors.NewFieldErrors()
	if r.Status == "" {
		fields.Add("status", "The status field is required.")
	} else if !models.Status(r.Status).IsValid() {
		fields.Add("status", "The selected status is invalid.")
	}
	if len([]rune(r.Notes)) > maxNoteLength {
		fields.Add("notes", "The notes field must not be greater than 2000 characters.")
	}
	if !fields.Empty() {
		return dErrors.Validation("Validation failed", fields)
	}
	return nil
}

// CleanupRequest is the body of POST /v1/admin/company-formation/drafts/cleanup.
type CleanupRequest struct {
	MaxAgeDays *int `json:"max_age_days"`
}

func (r *CleanupRequest) Validate() error {
	if r.MaxAgeDays == nil {
		return nil
	}
	if *r.MaxAgeDays < 1 || *r.MaxAgeDays > 365 {
		fields := dErrors.NewFieldErrors()
		fields.Add("max_age_days", "The max age days field must be between 1 and 365.")
		return dErrors.Validation("Validation failed", fields)
	}
	return nil
}

func (r *CleanupRequest) days() int {
	if r.MaxAgeDays == nil {
		return models.DefaultDraftRetentionDays
	}
	return *r.MaxAgeDays
}
