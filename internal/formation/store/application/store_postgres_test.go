package application

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"formation/internal/formation/models"
	id "formation/pkg/domain"
	"formation/pkg/platform/sentinel"
)

type PostgresStoreMockSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *PostgresStore
	ctx   context.Context
	now   time.Time
}

func TestPostgresStoreMockSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreMockSuite))
}

func (s *PostgresStoreMockSuite) SetupTest() {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	s.Require().NoError(err)
	db.SetMaxOpenConns(1)
	s.db, s.mock = db, mock
	s.store = NewPostgres(db)
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreMockSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func (s *PostgresStoreMockSuite) TestCreate() {
	app := newTestApplication("BVI-2026-AAAAAA", s.now)
	s.mock.ExpectExec(`INSERT INTO company_formations`).
		WithArgs(sqlmock.AnyArg(), "BVI-2026-AAAAAA", "submitted", app.CompanyName,
			sqlmock.AnyArg(), "ltd",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"", sqlmock.AnyArg(), nil, s.now, s.now, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.store.Create(s.ctx, app))
}

func (s *PostgresStoreMockSuite) TestCreateMapsUniqueViolation() {
	s.mock.ExpectExec(`INSERT INTO company_formations`).
		WillReturnError(&pq.Error{Code: uniqueViolation, Constraint: "company_formations_reference_number_key"})

	err := s.store.Create(s.ctx, newTestApplication("BVI-2026-AAAAAA", s.now))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreMockSuite) TestCreateWrapsOtherErrors() {
	s.mock.ExpectExec(`INSERT INTO company_formations`).WillReturnError(errors.New("connection reset"))

	err := s.store.Create(s.ctx, newTestApplication("BVI-2026-AAAAAA", s.now))
	s.Require().Error(err)
	s.NotErrorIs(err, sentinel.ErrAlreadyUsed)
	s.ErrorContains(err, "insert application")
}

func (s *PostgresStoreMockSuite) TestReferenceExists() {
	s.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM company_formations WHERE reference_number = \$1\)`).
		WithArgs("BVI-2026-AAAAAA").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.store.ReferenceExists(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresStoreMockSuite) applicationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reference_number", "status", "company_name", "alternative_company_name", "designation",
		"point_of_contact", "company_info", "countries_of_interest", "shares_structure",
		"shareholders", "beneficial_owners", "directors",
		"notes", "submitted_at", "processed_at", "created_at", "updated_at", "deleted_at",
	})
}

func (s *PostgresStoreMockSuite) TestFindByReferenceDecodesSections() {
	appID := uuid.New()
	rows := s.applicationRows().AddRow(
		appID.String(), "BVI-2026-AAAAAA", "under_review", "Harbour Ventures", "Harbour Group", "corp",
		[]byte(`{"full_name":"Jane Smith","email":"jane@example.com"}`),
		[]byte(`{"company_name":"Harbour Ventures","designation":"corp"}`),
		[]byte(`{"jurisdiction_of_operation":"uk","target_jurisdictions":["sg"]}`),
		[]byte(`{"number_of_shares":50000,"all_shares_issued":false,"number_of_issued_shares":100,"value_per_share":"1.5"}`),
		[]byte(`[{"type":"individual","full_name":"Jane Smith","nationality":"British","address":"12 Harbour Street","share_percentage":"100"}]`),
		[]byte(`[]`),
		[]byte(`[]`),
		"picked up", s.now, nil, s.now, s.now, nil,
	)
	s.mock.ExpectQuery(`SELECT .+ FROM company_formations\s+WHERE reference_number = \$1 AND deleted_at IS NULL`).
		WithArgs("BVI-2026-AAAAAA").
		WillReturnRows(rows)

	app, err := s.store.FindByReference(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	s.Equal(id.ApplicationID(appID), app.ID)
	s.Equal(models.StatusUnderReview, app.Status)
	s.Require().NotNil(app.AlternativeCompanyName)
	s.Equal("Harbour Group", *app.AlternativeCompanyName)
	s.Equal("jane@example.com", app.Form.PointOfContact.Email)
	s.Equal("1.5", app.Form.SharesStructure.ValuePerShare.String())
	s.Require().NotNil(app.Form.SharesStructure.NumberOfIssuedShares)
	s.Equal(int64(100), *app.Form.SharesStructure.NumberOfIssuedShares)
	s.Len(app.Form.Shareholders, 1)
	s.Nil(app.ProcessedAt)
	s.NotNil(app.SubmittedAt)
}

func (s *PostgresStoreMockSuite) TestFindByReferenceNotFound() {
	s.mock.ExpectQuery(`FROM company_formations`).WillReturnRows(s.applicationRows())

	_, err := s.store.FindByReference(s.ctx, "BVI-2026-ZZZZZZ")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreMockSuite) TestListByStatusPassesPaging() {
	s.mock.ExpectQuery(`WHERE status = \$1 AND deleted_at IS NULL\s+ORDER BY created_at DESC`).
		WithArgs("submitted", 20, 40).
		WillReturnRows(s.applicationRows())

	apps, err := s.store.ListByStatus(s.ctx, models.StatusSubmitted, 20, 40)
	s.Require().NoError(err)
	s.Empty(apps)
	s.NotNil(apps)
}

func (s *PostgresStoreMockSuite) TestUpdateStatus() {
	app := newTestApplication("BVI-2026-AAAAAA", s.now)
	s.Require().NoError(app.Transition(models.StatusUnderReview, "assigned", s.now))

	s.Run("applies when status matches", func() {
		s.mock.ExpectExec(`UPDATE company_formations\s+SET status = \$3`).
			WithArgs("BVI-2026-AAAAAA", "submitted", "under_review", nil, "assigned", s.now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.NoError(s.store.UpdateStatus(s.ctx, app, models.StatusSubmitted))
	})

	s.Run("invalid state when another writer moved it", func() {
		s.mock.ExpectExec(`UPDATE company_formations`).WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(`SELECT EXISTS .+ deleted_at IS NULL\)`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		s.ErrorIs(s.store.UpdateStatus(s.ctx, app, models.StatusSubmitted), sentinel.ErrInvalidState)
	})

	s.Run("not found when the row is gone", func() {
		s.mock.ExpectExec(`UPDATE company_formations`).WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		s.ErrorIs(s.store.UpdateStatus(s.ctx, app, models.StatusSubmitted), sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreMockSuite) TestSoftDelete() {
	s.mock.ExpectExec(`SET deleted_at = \$2`).
		WithArgs("BVI-2026-AAAAAA", s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.store.SoftDelete(s.ctx, "BVI-2026-AAAAAA", s.now))

	s.mock.ExpectExec(`SET deleted_at = \$2`).WillReturnResult(sqlmock.NewResult(0, 0))
	s.ErrorIs(s.store.SoftDelete(s.ctx, "BVI-2026-AAAAAA", s.now), sentinel.ErrNotFound)
}

func (s *PostgresStoreMockSuite) TestStatistics() {
	s.mock.MatchExpectationsInOrder(false)
	dayStart, dayEnd := DayBounds(s.now)
	monthStart, monthEnd := MonthBounds(s.now)

	s.mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM company_formations WHERE deleted_at IS NULL$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	s.mock.ExpectQuery(`created_at >= \$1 AND created_at < \$2`).
		WithArgs(dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	s.mock.ExpectQuery(`AND status = \$1$`).
		WithArgs("submitted").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	s.mock.ExpectQuery(`processed_at >= \$2 AND processed_at < \$3`).
		WithArgs("completed", monthStart, monthEnd).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	s.mock.ExpectQuery(`GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("submitted", 5).AddRow("under_review", 4).AddRow("completed", 3))

	stats, err := s.store.Statistics(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(12), stats.Total)
	s.Equal(int64(3), stats.Today)
	s.Equal(int64(5), stats.Pending)
	s.Equal(int64(2), stats.CompletedThisMonth)
	s.Equal(int64(4), stats.ByStatus[models.StatusUnderReview])
	s.Equal(int64(0), stats.ByStatus[models.StatusApproved])
}
