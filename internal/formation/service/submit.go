package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"formation/internal/audit"
	"formation/internal/formation/models"
	"formation/internal/formation/validation"
	id "formation/pkg/domain"
	dErrors "formation/pkg/domain-errors"
	"formation/pkg/platform/sentinel"
	"formation/pkg/requestcontext"
)

// errReferenceTaken signals a collision to the retry loop.
var errReferenceTaken = errors.New("reference number taken")

// Submit validates p and stores it as a submitted application under a fresh
// reference number. Validation failures never reach the store.
func (s *Service) Submit(ctx context.Context, p *validation.Payload) (app *models.Application, err error) {
	ctx, span := s.startSpan(ctx, "Submit")
	defer func() { finishSpan(span, err) }()

	start := time.Now()
	now := requestcontext.Now(ctx)

	form, err := validation.Validate(p, now.UTC())
	if err != nil {
		if de, ok := dErrors.As(err); ok {
			s.metrics.IncrementValidationFailures(de.Fields.Fields())
		}
		return nil, err
	}

	appID := id.NewApplicationID()
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref, genErr := s.newReference(now)
		if genErr != nil {
			return nil, dErrors.Wrap(genErr, dErrors.CodeInternal, "failed to generate reference number")
		}
		app, err = models.NewSubmittedApplication(appID, ref, *form, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build application")
		}

		err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
			taken, err := s.applications.ReferenceExists(ctx, ref)
			if err != nil {
				return err
			}
			if taken {
				return errReferenceTaken
			}
			return s.applications.Create(ctx, app)
		})
		if errors.Is(err, errReferenceTaken) || errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.metrics.IncrementReferenceCollision()
			s.logger.DebugContext(ctx, "reference number collision",
				"attempt", attempt,
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}
		if err != nil {
			if _, ok := dErrors.As(err); ok {
				return nil, err
			}
			return nil, internalError(err, "failed to store application")
		}

		span.SetAttributes(attribute.String("formation.reference_number", ref.String()))
		s.metrics.IncrementSubmitted()
		s.metrics.ObserveSubmit(start)
		s.logger.InfoContext(ctx, "company formation application submitted",
			"reference_number", ref.String(),
			"company_name", app.CompanyName,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.logAudit(ctx, audit.Event{
			Action:  audit.EventApplicationSubmitted,
			Subject: ref.String(),
			Status:  string(app.Status),
		})
		return app, nil
	}
	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique reference number")
}
