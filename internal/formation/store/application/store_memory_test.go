package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"formation/internal/formation/models"
	id "formation/pkg/domain"
	"formation/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)
}

func newTestApplication(ref string, createdAt time.Time) *models.Application {
	app, err := models.NewSubmittedApplication(id.NewApplicationID(), id.ReferenceNumber(ref), models.ApplicationForm{
		CompanyInfo: models.CompanyInfo{CompanyName: "Company " + ref, Designation: models.DesignationLtd},
	}, createdAt)
	if err != nil {
		panic(err)
	}
	return app
}

func (s *InMemoryStoreSuite) TestCreateRejectsDuplicateReference() {
	s.Require().NoError(s.store.Create(s.ctx, newTestApplication("BVI-2026-AAAAAA", s.now)))
	err := s.store.Create(s.ctx, newTestApplication("BVI-2026-AAAAAA", s.now))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *InMemoryStoreSuite) TestFindReturnsCopy() {
	s.Require().NoError(s.store.Create(s.ctx, newTestApplication("BVI-2026-AAAAAA", s.now)))

	found, err := s.store.FindByReference(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	found.Status = models.StatusCompleted

	again, err := s.store.FindByReference(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, again.Status)

	_, err = s.store.FindByReference(s.ctx, "BVI-2026-ZZZZZZ")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestStoredFormDoesNotAliasCallers() {
	passport := "P1234567"
	app := newTestApplication("BVI-2026-AAAAAA", s.now)
	app.Form.Shareholders = []models.Shareholder{{
		Type:   models.ShareholderType("individual"),
		Person: models.Person{FullName: "Ada Lovelace", PassportNumber: &passport},
	}}
	app.Form.CountriesOfInterest.TargetJurisdictions = []string{"sg"}
	s.Require().NoError(s.store.Create(s.ctx, app))

	app.Form.Shareholders[0].FullName = "Mallory"
	passport = "X0000000"
	app.Form.CountriesOfInterest.TargetJurisdictions[0] = "us"

	found, err := s.store.FindByReference(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", found.Form.Shareholders[0].FullName)
	s.Equal("P1234567", *found.Form.Shareholders[0].PassportNumber)
	s.Equal([]string{"sg"}, found.Form.CountriesOfInterest.TargetJurisdictions)

	found.Form.Shareholders[0].FullName = "Eve"
	*found.Form.Shareholders[0].PassportNumber = "Y0000000"
	listed, err := s.store.ListCreatedSince(s.ctx, s.now.Add(-time.Hour), 10)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal("Ada Lovelace", listed[0].Form.Shareholders[0].FullName)
	s.Equal("P1234567", *listed[0].Form.Shareholders[0].PassportNumber)

	listed[0].Form.Shareholders[0].FullName = "Trudy"
	again, err := s.store.FindByReference(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", again.Form.Shareholders[0].FullName)
}

func (s *InMemoryStoreSuite) TestUpdateStatusIsCompareAndSet() {
	app := newTestApplication("BVI-2026-AAAAAA", s.now)
	s.Require().NoError(s.store.Create(s.ctx, app))

	s.Require().NoError(app.Transition(models.StatusUnderReview, "", s.now))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, app, models.StatusSubmitted))

	// A second writer still believing the row is submitted loses.
	stale := newTestApplication("BVI-2026-AAAAAA", s.now)
	stale.Status = models.StatusUnderReview
	s.ErrorIs(s.store.UpdateStatus(s.ctx, stale, models.StatusSubmitted), sentinel.ErrInvalidState)

	s.ErrorIs(s.store.UpdateStatus(s.ctx, newTestApplication("BVI-2026-ZZZZZZ", s.now), models.StatusSubmitted), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSoftDeleteHidesButReservesReference() {
	s.Require().NoError(s.store.Create(s.ctx, newTestApplication("BVI-2026-AAAAAA", s.now)))
	s.Require().NoError(s.store.SoftDelete(s.ctx, "BVI-2026-AAAAAA", s.now))

	_, err := s.store.FindByReference(s.ctx, "BVI-2026-AAAAAA")
	s.ErrorIs(err, sentinel.ErrNotFound)
	exists, err := s.store.ReferenceExists(s.ctx, "BVI-2026-AAAAAA")
	s.Require().NoError(err)
	s.True(exists)
	s.ErrorIs(s.store.SoftDelete(s.ctx, "BVI-2026-AAAAAA", s.now), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListByStatusNewestFirstWithPaging() {
	for i, ref := range []string{"BVI-2026-AAAAA1", "BVI-2026-AAAAA2", "BVI-2026-AAAAA3"} {
		s.Require().NoError(s.store.Create(s.ctx, newTestApplication(ref, s.now.Add(time.Duration(i)*time.Minute))))
	}

	page, err := s.store.ListByStatus(s.ctx, models.StatusSubmitted, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(id.ReferenceNumber("BVI-2026-AAAAA3"), page[0].ReferenceNumber)
	s.Equal(id.ReferenceNumber("BVI-2026-AAAAA2"), page[1].ReferenceNumber)

	page, err = s.store.ListByStatus(s.ctx, models.StatusSubmitted, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 1)

	page, err = s.store.ListByStatus(s.ctx, models.StatusApproved, 10, 0)
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *InMemoryStoreSuite) TestListCreatedSince() {
	s.Require().NoError(s.store.Create(s.ctx, newTestApplication("BVI-2026-OLD001", s.now.AddDate(0, 0, -31))))
	s.Require().NoError(s.store.Create(s.ctx, newTestApplication("BVI-2026-NEW001", s.now.AddDate(0, 0, -1))))

	recent, err := s.store.ListCreatedSince(s.ctx, s.now.AddDate(0, 0, -30), 0)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(id.ReferenceNumber("BVI-2026-NEW001"), recent[0].ReferenceNumber)
}

func (s *InMemoryStoreSuite) TestStatistics() {
	today := newTestApplication("BVI-2026-TODAY1", s.now.Add(-time.Hour))
	yesterday := newTestApplication("BVI-2026-YSTRDY", s.now.AddDate(0, 0, -1))
	completed := newTestApplication("BVI-2026-DONE01", s.now.AddDate(0, -2, 0))
	completedLastMonth := newTestApplication("BVI-2026-DONE02", s.now.AddDate(0, -2, 0))
	deleted := newTestApplication("BVI-2026-GONE01", s.now)

	for app, processed := range map[*models.Application]time.Time{
		completed:          s.now.AddDate(0, 0, -3),
		completedLastMonth: s.now.AddDate(0, -1, 0),
	} {
		s.Require().NoError(app.Transition(models.StatusUnderReview, "", processed))
		s.Require().NoError(app.Transition(models.StatusApproved, "", processed))
		s.Require().NoError(app.Transition(models.StatusCompleted, "", processed))
	}
	for _, app := range []*models.Application{today, yesterday, completed, completedLastMonth, deleted} {
		s.Require().NoError(s.store.Create(s.ctx, app))
	}
	s.Require().NoError(s.store.SoftDelete(s.ctx, deleted.ReferenceNumber, s.now))

	stats, err := s.store.Statistics(s.ctx, s.now)
	s.Require().NoError(err)
	s.Equal(int64(4), stats.Total)
	s.Equal(int64(1), stats.Today)
	s.Equal(int64(2), stats.Pending)
	s.Equal(int64(1), stats.CompletedThisMonth)
	s.Equal(int64(2), stats.ByStatus[models.StatusCompleted])
	s.Equal(int64(0), stats.ByStatus[models.StatusRejected])
}
