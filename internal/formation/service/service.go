package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"formation/internal/audit"
	"formation/internal/formation/metrics"
	"formation/internal/formation/models"
	id "formation/pkg/domain"
	dErrors "formation/pkg/domain-errors"
)

const (
	// maxReferenceAttempts bounds the collision retry loop. The suffix space is
	// 36^6 per year so exhausting it points at a broken generator or store.
	maxReferenceAttempts = 32

	// RecentApplicationsDays is the window of ListRecent.
	RecentApplicationsDays = 30
	// RecentDraftsWindow is the window of CountRecentDrafts.
	RecentDraftsWindow = 24 * time.Hour

	DefaultListLimit = 50
	MaxListLimit     = 200

	tracerName = "formation/internal/formation/service"
)

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	ReferenceExists(ctx context.Context, ref id.ReferenceNumber) (bool, error)
	FindByReference(ctx context.Context, ref id.ReferenceNumber) (*models.Application, error)
	ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Application, error)
	ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, app *models.Application, from models.Status) error
	SoftDelete(ctx context.Context, ref id.ReferenceNumber, at time.Time) error
	Statistics(ctx context.Context, now time.Time) (*models.Statistics, error)
}

type DraftStore interface {
	Upsert(ctx context.Context, d *models.Draft) error
	FindBySession(ctx context.Context, sessionID string) (*models.Draft, error)
	DeleteSavedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountSavedSince(ctx context.Context, since time.Time) (int64, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates application intake, reviewer actions and drafts.
type Service struct {
	applications   ApplicationStore
	drafts         DraftStore
	tx             TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	newReference   func(time.Time) (id.ReferenceNumber, error)
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithTxRunner sets the unit-of-work boundary used for creation. Without it
// an in-process lock serialises creations.
func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithReferenceGenerator replaces the random reference generator.
func WithReferenceGenerator(fn func(time.Time) (id.ReferenceNumber, error)) Option {
	return func(s *Service) {
		s.newReference = fn
	}
}

// New constructs a Service.
func New(applications ApplicationStore, drafts DraftStore, opts ...Option) *Service {
	s := &Service{
		applications: applications,
		drafts:       drafts,
		newReference: id.NewReferenceNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.tx == nil {
		s.tx = NewLockingTx()
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "formation."+name)
}

// finishSpan records err on span and ends it.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// internalError wraps an unexpected store failure. Context expiry is reported
// as a timeout so the caller sees 504 instead of 500.
func internalError(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
