package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"formation/internal/formation/models"
	id "formation/pkg/domain"
	"formation/pkg/platform/sentinel"
)

// InMemoryStore keeps applications in a map keyed by reference number.
// Soft-deleted rows stay in the map so their reference stays reserved.
type InMemoryStore struct {
	mu   sync.RWMutex
	apps map[id.ReferenceNumber]*models.Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{apps: make(map[id.ReferenceNumber]*models.Application)}
}

func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.apps[app.ReferenceNumber]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.apps[app.ReferenceNumber] = app.Clone()
	return nil
}

func (s *InMemoryStore) ReferenceExists(_ context.Context, ref id.ReferenceNumber) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.apps[ref]
	return ok, nil
}

func (s *InMemoryStore) FindByReference(_ context.Context, ref id.ReferenceNumber) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[ref]
	if !ok || app.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status models.Status, limit, offset int) ([]*models.Application, error) {
	return s.list(func(a *models.Application) bool { return a.Status == status }, limit, offset), nil
}

func (s *InMemoryStore) ListCreatedSince(_ context.Context, since time.Time, limit int) ([]*models.Application, error) {
	return s.list(func(a *models.Application) bool { return !a.CreatedAt.Before(since) }, limit, 0), nil
}

// list returns matching live applications newest first.
func (s *InMemoryStore) list(match func(*models.Application) bool, limit, offset int) []*models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, app := range s.apps {
		if app.IsDeleted() || !match(app) {
			continue
		}
		out = append(out, app.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ReferenceNumber > out[j].ReferenceNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []*models.Application{}
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// UpdateStatus writes app's status fields only if the stored status still
// equals from.
func (s *InMemoryStore) UpdateStatus(_ context.Context, app *models.Application, from models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.apps[app.ReferenceNumber]
	if !ok || stored.IsDeleted() {
		return sentinel.ErrNotFound
	}
	if stored.Status != from {
		return sentinel.ErrInvalidState
	}
	stored.Status = app.Status
	stored.ProcessedAt = nil
	if app.ProcessedAt != nil {
		processedAt := *app.ProcessedAt
		stored.ProcessedAt = &processedAt
	}
	stored.Notes = app.Notes
	stored.UpdatedAt = app.UpdatedAt
	return nil
}

func (s *InMemoryStore) SoftDelete(_ context.Context, ref id.ReferenceNumber, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.apps[ref]
	if !ok || stored.IsDeleted() {
		return sentinel.ErrNotFound
	}
	deletedAt := at
	stored.DeletedAt = &deletedAt
	stored.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) Statistics(_ context.Context, now time.Time) (*models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart, dayEnd := DayBounds(now)
	monthStart, monthEnd := MonthBounds(now)
	stats := models.NewStatistics()
	for _, app := range s.apps {
		if app.IsDeleted() {
			continue
		}
		stats.Total++
		stats.ByStatus[app.Status]++
		if inRange(app.CreatedAt, dayStart, dayEnd) {
			stats.Today++
		}
		if app.Status == models.StatusSubmitted {
			stats.Pending++
		}
		if app.Status == models.StatusCompleted && app.ProcessedAt != nil && inRange(*app.ProcessedAt, monthStart, monthEnd) {
			stats.CompletedThisMonth++
		}
	}
	return stats, nil
}

// DayBounds returns [start, end) of the calendar day containing now, in now's location.
func DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns [start, end) of the calendar month containing now.
func MonthBounds(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
