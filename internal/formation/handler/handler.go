package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"formation/internal/formation/models"
	"formation/internal/formation/validation"
	"formation/internal/platform/middleware"
	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/httputil"
)

const (
	msgSubmitted       = "Company formation application submitted successfully"
	msgSubmitFailed    = "Failed to submit company formation application"
	msgDraftSaved      = "Form data saved successfully"
	msgDraftSaveFailed = "Failed to save form data"
	msgDraftLoadFailed = "Failed to retrieve form data"
	msgNoDraft         = "No saved form data found"
	msgStatusFailed    = "Failed to retrieve application status"
)

// Service is the formation service as the HTTP layer sees it.
type Service interface {
	Submit(ctx context.Context, p *validation.Payload) (*models.Application, error)
	GetByReference(ctx context.Context, ref string) (*models.Application, error)
	SaveDraft(ctx context.Context, p *validation.DraftPayload) (*models.Draft, error)
	GetDraft(ctx context.Context, sessionID string) (*models.Draft, bool, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Application, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Application, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	TransitionStatus(ctx context.Context, ref, status, note string) (*models.Application, error)
	Delete(ctx context.Context, ref string) error
	CleanupStaleDrafts(ctx context.Context, maxAgeDays int) (int64, error)
}

// Handler serves the public intake endpoints and the reviewer API.
type Handler struct {
	service Service
	logger  *slog.Logger
	debug   bool
}

// New creates a Handler. With debug set, 500 responses carry the underlying
// error as "detail".
func New(service Service, logger *slog.Logger, debug bool) *Handler {
	return &Handler{service: service, logger: logger, debug: debug}
}

// Register mounts the public intake routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/company-formation", h.handleSubmit)
	r.Post("/v1/company-formation/", h.handleSubmit)
	r.Post("/v1/company-formation/auto-save", h.handleAutoSave)
	r.Get("/v1/company-formation/form-data", h.handleFormData)
	r.Get("/v1/company-formation/status/{referenceNumber}", h.handleStatus)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var payload validation.Payload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeClientError(w, ctx, err, "invalid submission body")
		return
	}

	app, err := h.service.Submit(ctx, &payload)
	if err != nil {
		h.writeFailure(w, ctx, err, msgSubmitFailed)
		return
	}

	h.logger.InfoContext(ctx, "company formation application accepted",
		"request_id", requestID,
		"reference_number", app.ReferenceNumber.String(),
	)
	httputil.WriteSuccess(w, http.StatusCreated, msgSubmitted, toSubmitResponse(app))
}

func (h *Handler) handleAutoSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload validation.DraftPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		h.writeClientError(w, ctx, err, "invalid auto-save body")
		return
	}

	d, err := h.service.SaveDraft(ctx, &payload)
	if err != nil {
		h.writeFailure(w, ctx, err, msgDraftSaveFailed)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, msgDraftSaved, toAutoSaveResponse(d))
}

func (h *Handler) handleFormData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, found, err := h.service.GetDraft(ctx, r.URL.Query().Get("session_id"))
	if err != nil {
		h.writeFailure(w, ctx, err, msgDraftLoadFailed)
		return
	}
	if !found {
		httputil.WriteSuccess(w, http.StatusOK, msgNoDraft, nil)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", toFormDataResponse(d))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.service.GetByReference(ctx, chi.URLParam(r, "referenceNumber"))
	if err != nil {
		h.writeFailure(w, ctx, err, msgStatusFailed)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", toStatusResponse(app))
}

// writeClientError renders a decode failure.
func (h *Handler) writeClientError(w http.ResponseWriter, ctx context.Context, err error, logMsg string) {
	h.logger.InfoContext(ctx, logMsg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

// writeFailure renders a service error. Client errors pass through as-is;
// anything else is logged and replaced by message, with the cause exposed
// only in debug mode.
func (h *Handler) writeFailure(w http.ResponseWriter, ctx context.Context, err error, message string) {
	requestID := middleware.GetRequestID(ctx)
	de, ok := dErrors.As(err)
	if ok && de.Code != dErrors.CodeInternal {
		if de.Code == dErrors.CodeValidation {
			h.logger.InfoContext(ctx, "request failed validation",
				"request_id", requestID,
				"fields", de.Fields.Fields(),
			)
		} else if de.Code == dErrors.CodeTimeout {
			h.logger.WarnContext(ctx, "request timed out",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.ErrorContext(ctx, message,
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteErrorDebug(w, dErrors.Wrap(err, dErrors.CodeInternal, message), h.debug)
}
