// Package cleanup runs stale-draft removal on a cron schedule.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultSchedule = "@every 1h"

	defaultJobTimeout = 2 * time.Minute
	stopGrace         = 30 * time.Second
)

// Cleaner is the slice of the formation service the job drives.
type Cleaner interface {
	CleanupStaleDrafts(ctx context.Context, maxAgeDays int) (int64, error)
	CountRecentDrafts(ctx context.Context) (int64, error)
}

// Scheduler owns a cron runner with a single cleanup job. Overlapping runs
// are skipped and a panicking run is recovered and logged.
type Scheduler struct {
	cron          *cron.Cron
	cleaner       Cleaner
	retentionDays int
	jobTimeout    time.Duration
	logger        *slog.Logger
	baseCtx       context.Context
}

type Option func(*Scheduler)

func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// New registers the cleanup job on schedule (standard five-field cron or a
// descriptor such as "@every 1h").
func New(cleaner Cleaner, schedule string, retentionDays int, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	cronLogger := slogCronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		cleaner:       cleaner,
		retentionDays: retentionDays,
		jobTimeout:    defaultJobTimeout,
		logger:        logger,
		baseCtx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.InfoContext(ctx, "draft cleanup scheduler started", "retention_days", s.retentionDays)

	<-ctx.Done()
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(stopGrace):
		s.logger.Warn("draft cleanup job still running at shutdown")
	}
	s.logger.Info("draft cleanup scheduler stopped")
	return nil
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.jobTimeout)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		s.logger.ErrorContext(ctx, "draft cleanup failed", "error", err)
	}
}

// RunOnce removes stale drafts and refreshes the recent-drafts gauge.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	removed, err := s.cleaner.CleanupStaleDrafts(ctx, s.retentionDays)
	if err != nil {
		return fmt.Errorf("cleanup stale drafts: %w", err)
	}
	recent, err := s.cleaner.CountRecentDrafts(ctx)
	if err != nil {
		return fmt.Errorf("count recent drafts: %w", err)
	}
	s.logger.DebugContext(ctx, "draft cleanup run finished",
		"removed", removed,
		"recent", recent,
	)
	return nil
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

func (l slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
