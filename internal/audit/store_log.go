package audit

import (
	"context"
	"log/slog"
)

// LogStore writes events as structured log lines. It is the sink used when
// no broker is configured.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID.String(),
		"category", string(event.Category),
		"action", string(event.Action),
		"subject", event.Subject,
		"status", event.Status,
		"previous_status", event.PreviousStatus,
		"count", event.Count,
		"request_id", event.RequestID,
		"actor_id", event.ActorID,
		"client", event.Client,
		"timestamp", event.Timestamp,
	)
	return nil
}
