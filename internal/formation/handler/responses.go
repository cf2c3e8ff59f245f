package handler

import (
	"encoding/json"
	"time"

	"formation/internal/formation/models"
)

// SubmitResponse is the data of a 201 from POST /v1/company-formation/.
type SubmitResponse struct {
	ID              string    `json:"id"`
	ReferenceNumber string    `json:"reference_number"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func toSubmitResponse(app *models.Application) *SubmitResponse {
	return &SubmitResponse{
		ID:              app.ID.String(),
		ReferenceNumber: app.ReferenceNumber.String(),
		Status:          string(app.Status),
		CreatedAt:       app.CreatedAt,
	}
}

type AutoSaveResponse struct {
	SavedAt     time.Time `json:"saved_at"`
	CurrentStep int       `json:"current_step"`
}

func toAutoSaveResponse(d *models.Draft) *AutoSaveResponse {
	return &AutoSaveResponse{SavedAt: d.LastSavedAt, CurrentStep: d.CurrentStep}
}

type FormDataResponse struct {
	CurrentStep int             `json:"current_step"`
	FormData    json.RawMessage `json:"form_data"`
	LastSavedAt time.Time       `json:"last_saved_at"`
}

func toFormDataResponse(d *models.Draft) *FormDataResponse {
	return &FormDataResponse{CurrentStep: d.CurrentStep, FormData: d.FormData, LastSavedAt: d.LastSavedAt}
}

// StatusResponse is the public status view; it carries no personal data.
type StatusResponse struct {
	ReferenceNumber string     `json:"reference_number"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	CompanyName     string     `json:"company_name"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toStatusResponse(app *models.Application) *StatusResponse {
	return &StatusResponse{
		ReferenceNumber: app.ReferenceNumber.String(),
		Status:          string(app.Status),
		StatusLabel:     app.Status.Label(),
		CompanyName:     app.CompanyName,
		SubmittedAt:     app.SubmittedAt,
		UpdatedAt:       app.UpdatedAt,
	}
}

// ApplicationResponse is the full reviewer view. The form sections are
// flattened into the top level under their payload names.
type ApplicationResponse struct {
	ID              string     `json:"id"`
	ReferenceNumber string     `json:"reference_number"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	Notes           string     `json:"notes"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	ProcessedAt     *time.Time `json:"processed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	models.ApplicationForm
}

func toApplicationResponse(app *models.Application) *ApplicationResponse {
	return &ApplicationResponse{
		ID:              app.ID.String(),
		ReferenceNumber: app.ReferenceNumber.String(),
		Status:          string(app.Status),
		StatusLabel:     app.Status.Label(),
		Notes:           app.Notes,
		SubmittedAt:     app.SubmittedAt,
		ProcessedAt:     app.ProcessedAt,
		CreatedAt:       app.CreatedAt,
		UpdatedAt:       app.UpdatedAt,
		ApplicationForm: app.Form,
	}
}

// ApplicationSummary is one row of an admin listing.
type ApplicationSummary struct {
	ReferenceNumber string     `json:"reference_number"`
	Status          string     `json:"status"`
	CompanyName     string     `json:"company_name"`
	Designation     string     `json:"designation"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ListResponse struct {
	Applications []ApplicationSummary `json:"applications"`
	Count        int                  `json:"count"`
	Offset       int                  `json:"offset"`
}

func toListResponse(apps []*models.Application, offset int) *ListResponse {
	out := &ListResponse{Applications: make([]ApplicationSummary, 0, len(apps)), Offset: offset}
	for _, app := range apps {
		out.Applications = append(out.Applications, ApplicationSummary{
			ReferenceNumber: app.ReferenceNumber.String(),
			Status:          string(app.Status),
			CompanyName:     app.CompanyName,
			Designation:     string(app.Designation),
			SubmittedAt:     app.SubmittedAt,
			CreatedAt:       app.CreatedAt,
		})
	}
	out.Count = len(out.Applications)
	return out
}

type StatisticsResponse struct {
	Total              int64            `json:"total"`
	Today              int64            `json:"today"`
	Pending            int64            `json:"pending"`
	CompletedThisMonth int64            `json:"completed_this_month"`
	ByStatus           map[string]int64 `json:"by_status"`
}

func toStatisticsResponse(stats *models.Statistics) *StatisticsResponse {
	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return &StatisticsResponse{
		Total:              stats.Total,
		Today:              stats.Today,
		Pending:            stats.Pending,
		CompletedThisMonth: stats.CompletedThisMonth,
		ByStatus:           byStatus,
	}
}

type CleanupResponse struct {
	Removed    int64 `json:"removed"`
	MaxAgeDays int   `json:"max_age_days"`
}
