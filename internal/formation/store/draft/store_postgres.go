package draft

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"formation/internal/formation/models"
	"formation/pkg/platform/sentinel"
	txcontext "formation/pkg/platform/tx"
)

// PostgresStore persists drafts in the form_sessions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.Pick(ctx, s.db)
}

// Upsert inserts or replaces the draft for d.SessionID. An older save arriving
// after a newer one is ignored.
func (s *PostgresStore) Upsert(ctx context.Context, d *models.Draft) error {
	query := `
		INSERT INTO form_sessions (session_id, current_step, form_data, last_saved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			form_data = EXCLUDED.form_data,
			last_saved_at = EXCLUDED.last_saved_at,
			updated_at = EXCLUDED.updated_at
		WHERE form_sessions.last_saved_at <= EXCLUDED.last_saved_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		d.SessionID, d.CurrentStep, []byte(d.FormData), d.LastSavedAt, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySession(ctx context.Context, sessionID string) (*models.Draft, error) {
	query := `
		SELECT session_id, current_step, form_data, last_saved_at, created_at, updated_at
		FROM form_sessions
		WHERE session_id = $1
	`
	var d models.Draft
	var data []byte
	err := s.execer(ctx).QueryRowContext(ctx, query, sessionID).Scan(
		&d.SessionID, &d.CurrentStep, &data, &d.LastSavedAt, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	d.FormData = data
	return &d, nil
}

func (s *PostgresStore) DeleteSavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM form_sessions WHERE last_saved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale drafts: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete stale drafts: %w", err)
	}
	return removed, nil
}

func (s *PostgresStore) CountSavedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM form_sessions WHERE last_saved_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent drafts: %w", err)
	}
	return count, nil
}
