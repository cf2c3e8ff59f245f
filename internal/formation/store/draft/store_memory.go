package draft

import (
	"context"
	"sync"
	"time"

	"formation/internal/formation/models"
	"formation/pkg/platform/sentinel"
)

// InMemoryStore keeps drafts in a map keyed by session id.
type InMemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*models.Draft
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{drafts: make(map[string]*models.Draft)}
}

// Upsert stores d unless a save with a later timestamp already landed.
// CreatedAt of an existing draft is preserved.
func (s *InMemoryStore) Upsert(_ context.Context, d *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *d
	if existing, ok := s.drafts[d.SessionID]; ok {
		if existing.LastSavedAt.After(d.LastSavedAt) {
			return nil
		}
		stored.CreatedAt = existing.CreatedAt
	}
	stored.FormData = append([]byte(nil), d.FormData...)
	s.drafts[d.SessionID] = &stored
	return nil
}

func (s *InMemoryStore) FindBySession(_ context.Context, sessionID string) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *d
	found.FormData = append([]byte(nil), d.FormData...)
	return &found, nil
}

// DeleteSavedBefore removes drafts whose last save is strictly before cutoff.
func (s *InMemoryStore) DeleteSavedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, d := range s.drafts {
		if d.LastSavedAt.Before(cutoff) {
			delete(s.drafts, key)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryStore) CountSavedSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, d := range s.drafts {
		if !d.LastSavedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
