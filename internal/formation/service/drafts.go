package service

import (
	"context"
	"errors"
	"strings"

	"formation/internal/audit"
	"formation/internal/formation/models"
	"formation/internal/formation/validation"
	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/sentinel"
	"formation/pkg/requestcontext"
)

// SaveDraft upserts the draft for the payload's session. Form data replaces
// whatever was stored; saving the same payload again only advances
// LastSavedAt.
func (s *Service) SaveDraft(ctx context.Context, p *validation.DraftPayload) (d *models.Draft, err error) {
	ctx, span := s.startSpan(ctx, "SaveDraft")
	defer func() { finishSpan(span, err) }()

	in, err := validation.ValidateDraft(p)
	if err != nil {
		return nil, err
	}

	d = &models.Draft{SessionID: in.SessionID}
	d.Touch(in.CurrentStep, in.FormData, requestcontext.Now(ctx))
	if err := s.drafts.Upsert(ctx, d); err != nil {
		return nil, internalError(err, "failed to save draft")
	}

	s.metrics.IncrementDraftSaved(d.CurrentStep)
	s.logger.DebugContext(ctx, "draft saved",
		"current_step", d.CurrentStep,
		"request_id", requestcontext.RequestID(ctx),
	)
	return d, nil
}

// GetDraft loads the draft for sessionID. A session without a draft is a
// normal outcome and reports found=false with a nil error.
func (s *Service) GetDraft(ctx context.Context, sessionID string) (d *models.Draft, found bool, err error) {
	ctx, span := s.startSpan(ctx, "GetDraft")
	defer func() { finishSpan(span, err) }()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		fields := dErrors.NewFieldErrors()
		fields.Add("session_id", "The session id field is required.")
		return nil, false, dErrors.Validation(validation.MessageFailed, fields)
	}
	if len([]rune(sessionID)) > models.MaxSessionIDLength {
		return nil, false, nil
	}

	d, err = s.drafts.FindBySession(ctx, sessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, internalError(err, "failed to load draft")
	}
	return d, true, nil
}

// CleanupStaleDrafts removes drafts not saved within maxAgeDays days and
// returns how many were removed. A non-positive age uses the default.
func (s *Service) CleanupStaleDrafts(ctx context.Context, maxAgeDays int) (removed int64, err error) {
	ctx, span := s.startSpan(ctx, "CleanupStaleDrafts")
	defer func() { finishSpan(span, err) }()

	if maxAgeDays <= 0 {
		maxAgeDays = models.DefaultDraftRetentionDays
	}
	cutoff := requestcontext.Now(ctx).AddDate(0, 0, -maxAgeDays)
	removed, err = s.drafts.DeleteSavedBefore(ctx, cutoff)
	if err != nil {
		return 0, internalError(err, "failed to clean up drafts")
	}

	s.metrics.AddDraftsCleaned(removed)
	s.logger.InfoContext(ctx, "stale drafts cleaned",
		"removed", removed,
		"max_age_days", maxAgeDays,
	)
	if removed > 0 {
		s.logAudit(ctx, audit.Event{
			Action: audit.EventDraftsCleaned,
			Count:  removed,
		})
	}
	return removed, nil
}

// CountRecentDrafts counts drafts saved within RecentDraftsWindow and
// refreshes the recent-drafts gauge.
func (s *Service) CountRecentDrafts(ctx context.Context) (count int64, err error) {
	ctx, span := s.startSpan(ctx, "CountRecentDrafts")
	defer func() { finishSpan(span, err) }()

	count, err = s.drafts.CountSavedSince(ctx, requestcontext.Now(ctx).Add(-RecentDraftsWindow))
	if err != nil {
		return 0, internalError(err, "failed to count recent drafts")
	}
	s.metrics.SetRecentDrafts(count)
	return count, nil
}
