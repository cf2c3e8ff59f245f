package service

import (
	"context"
	"errors"
	"strings"

	"formation/internal/audit"
	"formation/internal/formation/models"
	id "formation/pkg/domain"
	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/sentinel"
	"formation/pkg/requestcontext"
)

const msgApplicationNotFound = "Application not found"

// GetByReference returns a live application. A malformed reference is
// reported as not found since it cannot name a stored application.
func (s *Service) GetByReference(ctx context.Context, raw string) (app *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "GetByReference")
	defer func() { finishSpan(span, err) }()

	ref, err := id.ParseReferenceNumber(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, msgApplicationNotFound)
	}
	return s.find(ctx, ref)
}

func (s *Service) find(ctx context.Context, ref id.ReferenceNumber) (*models.Application, error) {
	app, err := s.applications.FindByReference(ctx, ref)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, msgApplicationNotFound)
	}
	if err != nil {
		return nil, internalError(err, "failed to load application")
	}
	return app, nil
}

// ListByStatus pages through live applications with the given status, newest first.
func (s *Service) ListByStatus(ctx context.Context, rawStatus string, limit, offset int) (apps []*models.Application, err error) {
	ctx, span := s.startSpan(ctx, "ListByStatus")
	defer func() { finishSpan(span, err) }()

	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "offset must not be negative")
	}
	apps, err = s.applications.ListByStatus(ctx, status, clampLimit(limit), offset)
	if err != nil {
		return nil, internalError(err, "failed to list applications")
	}
	return apps, nil
}

// ListRecent returns live applications created within the last
// RecentApplicationsDays days, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) (apps []*models.Application, err error) {
	ctx, span := s.startSpan(ctx, "ListRecent")
	defer func() { finishSpan(span, err) }()

	since := requestcontext.Now(ctx).AddDate(0, 0, -RecentApplicationsDays)
	apps, err = s.applications.ListCreatedSince(ctx, since, clampLimit(limit))
	if err != nil {
		return nil, internalError(err, "failed to list recent applications")
	}
	return apps, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// Statistics aggregates live applications as of the request time.
func (s *Service) Statistics(ctx context.Context) (stats *models.Statistics, err error) {
	ctx, span := s.startSpan(ctx, "Statistics")
	defer func() { finishSpan(span, err) }()

	stats, err = s.applications.Statistics(ctx, requestcontext.Now(ctx))
	if err != nil {
		return nil, internalError(err, "failed to compute statistics")
	}
	return stats, nil
}

// TransitionStatus moves an application through the review state machine and
// appends note to its notes. A concurrent reviewer that changed the status
// first makes this call fail with CodeInvalidState.
func (s *Service) TransitionStatus(ctx context.Context, raw, rawStatus, note string) (app *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "TransitionStatus")
	defer func() { finishSpan(span, err) }()

	next, err := models.ParseStatus(strings.TrimSpace(rawStatus))
	if err != nil {
		return nil, err
	}
	ref, err := id.ParseReferenceNumber(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, msgApplicationNotFound)
	}
	app, err = s.find(ctx, ref)
	if err != nil {
		return nil, err
	}

	previous := app.Status
	if err := app.Transition(next, strings.TrimSpace(note), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	err = s.applications.UpdateStatus(ctx, app, previous)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, msgApplicationNotFound)
	case errors.Is(err, sentinel.ErrInvalidState):
		return nil, dErrors.New(dErrors.CodeInvalidState, "application status changed concurrently")
	case err != nil:
		return nil, internalError(err, "failed to update application status")
	}

	s.metrics.IncrementTransition(string(previous), string(next))
	s.logger.InfoContext(ctx, "application status changed",
		"reference_number", ref.String(),
		"from", string(previous),
		"to", string(next),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logAudit(ctx, audit.Event{
		Action:         audit.EventApplicationStatusChanged,
		Subject:        ref.String(),
		Status:         string(next),
		PreviousStatus: string(previous),
	})
	return app, nil
}

// Delete soft-deletes an application. Its reference number stays reserved.
func (s *Service) Delete(ctx context.Context, raw string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { finishSpan(span, err) }()

	ref, err := id.ParseReferenceNumber(raw)
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, msgApplicationNotFound)
	}
	err = s.applications.SoftDelete(ctx, ref, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, msgApplicationNotFound)
	}
	if err != nil {
		return internalError(err, "failed to delete application")
	}

	s.logger.InfoContext(ctx, "application deleted",
		"reference_number", ref.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.logAudit(ctx, audit.Event{
		Action:  audit.EventApplicationDeleted,
		Subject: ref.String(),
	})
	return nil
}
