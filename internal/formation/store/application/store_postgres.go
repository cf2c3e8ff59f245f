package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"formation/internal/formation/models"
	id "formation/pkg/domain"
	"formation/pkg/platform/sentinel"
	txcontext "formation/pkg/platform/tx"
)

const uniqueViolation = "23505"

const applicationColumns = `id, reference_number, status, company_name, alternative_company_name, designation,
	point_of_contact, company_info, countries_of_interest, shares_structure, shareholders, beneficial_owners, directors,
	notes, submitted_at, processed_at, created_at, updated_at, deleted_at`

// PostgresStore persists applications in PostgreSQL. Sections are stored as
// JSONB documents; the scalar columns duplicated from company_info exist for
// indexing and listing.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed application store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.Pick(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	sections, err := marshalSections(&app.Form)
	if err != nil {
		return fmt.Errorf("encode application sections: %w", err)
	}
	query := `INSERT INTO company_formations (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(app.ID),
		app.ReferenceNumber.String(),
		string(app.Status),
		app.CompanyName,
		nullString(app.AlternativeCompanyName),
		string(app.Designation),
		sections[0], sections[1], sections[2], sections[3], sections[4], sections[5], sections[6],
		app.Notes,
		nullTime(app.SubmittedAt),
		nullTime(app.ProcessedAt),
		app.CreatedAt,
		app.UpdatedAt,
		nullTime(app.DeletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// ReferenceExists includes soft-deleted rows: a reference is never reissued.
func (s *PostgresStore) ReferenceExists(ctx context.Context, ref id.ReferenceNumber) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM company_formations WHERE reference_number = $1)`,
		ref.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference number: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) FindByReference(ctx context.Context, ref id.ReferenceNumber) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM company_formations
		WHERE reference_number = $1 AND deleted_at IS NULL`
	app, err := scanApplication(s.execer(ctx).QueryRowContext(ctx, query, ref.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application by reference: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM company_formations
		WHERE status = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, reference_number DESC
		LIMIT $2 OFFSET $3`
	return s.query(ctx, "list applications by status", query, string(status), limitArg(limit), offset)
}

func (s *PostgresStore) ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM company_formations
		WHERE created_at >= $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, reference_number DESC
		LIMIT $2`
	return s.query(ctx, "list recent applications", query, since, limitArg(limit))
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// UpdateStatus is a compare-and-set on the status column so two reviewers
// cannot both apply a transition from the same state.
func (s *PostgresStore) UpdateStatus(ctx context.Context, app *models.Application, from models.Status) error {
	res, err := s.execer(ctx).ExecContext(ctx, `UPDATE company_formations
		SET status = $3, processed_at = $4, notes = $5, updated_at = $6
		WHERE reference_number = $1 AND status = $2 AND deleted_at IS NULL`,
		app.ReferenceNumber.String(),
		string(from),
		string(app.Status),
		nullTime(app.ProcessedAt),
		app.Notes,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if affected == 0 {
		exists, err := s.liveReferenceExists(ctx, app.ReferenceNumber)
		if err != nil {
			return err
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) liveReferenceExists(ctx context.Context, ref id.ReferenceNumber) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM company_formations WHERE reference_number = $1 AND deleted_at IS NULL)`,
		ref.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) SoftDelete(ctx context.Context, ref id.ReferenceNumber, at time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `UPDATE company_formations
		SET deleted_at = $2, updated_at = $2
		WHERE reference_number = $1 AND deleted_at IS NULL`,
		ref.String(), at,
	)
	if err != nil {
		return fmt.Errorf("soft delete application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete application: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Statistics runs the aggregate queries concurrently.
func (s *PostgresStore) Statistics(ctx context.Context, now time.Time) (*models.Statistics, error) {
	dayStart, dayEnd := DayBounds(now)
	monthStart, monthEnd := MonthBounds(now)
	stats := models.NewStatistics()

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, query string, args ...any) {
		g.Go(func() error {
			return s.db.QueryRowContext(gctx, query, args...).Scan(dst)
		})
	}
	count(&stats.Total, `SELECT COUNT(*) FROM company_formations WHERE deleted_at IS NULL`)
	count(&stats.Today, `SELECT COUNT(*) FROM company_formations
		WHERE deleted_at IS NULL AND created_at >= $1 AND created_at < $2`, dayStart, dayEnd)
	count(&stats.Pending, `SELECT COUNT(*) FROM company_formations
		WHERE deleted_at IS NULL AND status = $1`, string(models.StatusSubmitted))
	count(&stats.CompletedThisMonth, `SELECT COUNT(*) FROM company_formations
		WHERE deleted_at IS NULL AND status = $1 AND processed_at >= $2 AND processed_at < $3`,
		string(models.StatusCompleted), monthStart, monthEnd)

	byStatus := make(map[models.Status]int64)
	g.Go(func() error {
		rows, err := s.db.QueryContext(gctx, `SELECT status, COUNT(*) FROM company_formations
			WHERE deleted_at IS NULL GROUP BY status`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var n int64
			if err := rows.Scan(&status, &n); err != nil {
				return err
			}
			byStatus[models.Status(status)] = n
		}
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("application statistics: %w", err)
	}
	for status, n := range byStatus {
		stats.ByStatus[status] = n
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		appID                               uuid.UUID
		ref, status, designation            string
		alternativeName                     sql.NullString
		poc, info, countries, shares        []byte
		shareholders, owners, directors     []byte
		submittedAt, processedAt, deletedAt sql.NullTime
		app                                 models.Application
	)
	err := row.Scan(
		&appID, &ref, &status, &app.CompanyName, &alternativeName, &designation,
		&poc, &info, &countries, &shares, &shareholders, &owners, &directors,
		&app.Notes, &submittedAt, &processedAt, &app.CreatedAt, &app.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	app.ID = id.ApplicationID(appID)
	app.ReferenceNumber = id.ReferenceNumber(ref)
	app.Status = models.Status(status)
	app.Designation = models.Designation(designation)
	if alternativeName.Valid {
		app.AlternativeCompanyName = &alternativeName.String
	}
	app.SubmittedAt = timePtr(submittedAt)
	app.ProcessedAt = timePtr(processedAt)
	app.DeletedAt = timePtr(deletedAt)

	docs := []struct {
		raw []byte
		dst any
	}{
		{poc, &app.Form.PointOfContact},
		{info, &app.Form.CompanyInfo},
		{countries, &app.Form.CountriesOfInterest},
		{shares, &app.Form.SharesStructure},
		{shareholders, &app.Form.Shareholders},
		{owners, &app.Form.BeneficialOwners},
		{directors, &app.Form.Directors},
	}
	for _, d := range docs {
		if err := json.Unmarshal(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode application section: %w", err)
		}
	}
	return &app, nil
}

// marshalSections encodes the seven sections in column order.
func marshalSections(f *models.ApplicationForm) ([7][]byte, error) {
	var out [7][]byte
	for i, v := range []any{
		f.PointOfContact, f.CompanyInfo, f.CountriesOfInterest, f.SharesStructure,
		f.Shareholders, f.BeneficialOwners, f.Directors,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		out[i] = raw
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// limitArg maps a non-positive limit to SQL's LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
