package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"formation/internal/formation/models"
	"formation/internal/platform/middleware"
	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/httputil"
	"formation/pkg/requestcontext"
)

// RegisterAdmin mounts the reviewer routes. The caller is responsible for
// guarding r with middleware.RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/v1/admin/company-formation", h.handleList)
	r.Get("/v1/admin/company-formation/statistics", h.handleStatistics)
	r.Post("/v1/admin/company-formation/drafts/cleanup", h.handleCleanup)
	r.Get("/v1/admin/company-formation/{referenceNumber}", h.handleGetApplication)
	r.Post("/v1/admin/company-formation/{referenceNumber}/status", h.handleTransition)
	r.Delete("/v1/admin/company-formation/{referenceNumber}", h.handleDelete)
}

// handleList lists by ?status= when given, otherwise the last 30 days.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	offset, err := queryInt(q.Get("offset"), "offset")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var apps []*models.Application
	if status := q.Get("status"); status == "" {
		offset = 0
		apps, err = h.service.ListRecent(ctx, limit)
	} else {
		apps, err = h.service.ListByStatus(ctx, status, limit, offset)
	}
	if err != nil {
		h.writeFailure(w, ctx, err, "Failed to list applications")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", toListResponse(apps, offset))
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return n, nil
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Statistics(ctx)
	if err != nil {
		h.writeFailure(w, ctx, err, "Failed to compute statistics")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", toStatisticsResponse(stats))
}

func (h *Handler) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.service.GetByReference(ctx, chi.URLParam(r, "referenceNumber"))
	if err != nil {
		h.writeFailure(w, ctx, err, "Failed to retrieve application")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", toApplicationResponse(app))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	app, err := h.service.TransitionStatus(ctx, chi.URLParam(r, "referenceNumber"), req.Status, req.Notes)
	if err != nil {
		h.writeFailure(w, ctx, err, "Failed to update application status")
		return
	}

	h.logger.InfoContext(ctx, "admin changed application status",
		"request_id", requestID,
		"admin", requestcontext.AdminSubject(ctx),
		"reference_number", app.ReferenceNumber.String(),
		"status", string(app.Status),
	)
	httputil.WriteSuccess(w, http.StatusOK, "Application status updated", toApplicationResponse(app))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Delete(ctx, chi.URLParam(r, "referenceNumber")); err != nil {
		h.writeFailure(w, ctx, err, "Failed to delete application")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req := &CleanupRequest{}
	if r.ContentLength != 0 {
		var ok bool
		if req, ok = httputil.DecodeAndPrepare[CleanupRequest](w, r, h.logger, ctx, requestID); !ok {
			return
		}
	}

	removed, err := h.service.CleanupStaleDrafts(ctx, req.days())
	if err != nil {
		h.writeFailure(w, ctx, err, "Failed to clean up drafts")
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Stale drafts removed", &CleanupResponse{Removed: removed, MaxAgeDays: req.days()})
}
