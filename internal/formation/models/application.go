package models

import (
	"strings"
	"time"

	id "formation/pkg/domain"
	dErrors "formation/pkg/domain-errors"
)

// Application is a persisted company-formation request.
// The reference number is assigned once at creation and never changes.
type Application struct {
	ID                     id.ApplicationID
	ReferenceNumber        id.ReferenceNumber
	Status                 Status
	CompanyName            string
	AlternativeCompanyName *string
	Designation            Designation
	Form                   ApplicationForm
	Notes                  string
	SubmittedAt            *time.Time
	ProcessedAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              *time.Time
}

// NewSubmittedApplication builds the record for an accepted form. Validation
// has already run, so only identity and timestamps are set here.
func NewSubmittedApplication(appID id.ApplicationID, ref id.ReferenceNumber, form ApplicationForm, now time.Time) (*Application, error) {
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application id required")
	}
	if ref.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reference number required")
	}
	submittedAt := now
	return &Application{
		ID:                     appID,
		ReferenceNumber:        ref,
		Status:                 StatusSubmitted,
		CompanyName:            form.CompanyInfo.CompanyName,
		AlternativeCompanyName: form.CompanyInfo.AlternativeCompanyName,
		Designation:            form.CompanyInfo.Designation,
		Form:                   form,
		SubmittedAt:            &submittedAt,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

// Transition moves the application to next if the lifecycle allows it.
// Entering a processed state stamps ProcessedAt; a non-empty note is appended.
func (a *Application) Transition(next Status, note string, now time.Time) error {
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	if !a.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvalidState,
			"cannot change status from "+a.Status.String()+" to "+next.String())
	}
	a.Status = next
	if next.IsProcessed() {
		processedAt := now
		a.ProcessedAt = &processedAt
	}
	a.AppendNote(note)
	a.UpdatedAt = now
	return nil
}

// AppendNote adds a reviewer note on its own line.
func (a *Application) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if a.Notes == "" {
		a.Notes = note
		return
	}
	a.Notes = a.Notes + "\n" + note
}

func (a *Application) IsDeleted() bool {
	return a.DeletedAt != nil
}
