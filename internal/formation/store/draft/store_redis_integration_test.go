//go:build integration

package draft_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"formation/internal/formation/models"
	"formation/internal/formation/store/draft"
	"formation/pkg/platform/sentinel"
	"formation/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *draft.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = draft.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeDraft(sessionID string, step int, data string, at time.Time) *models.Draft {
	d := &models.Draft{SessionID: sessionID}
	d.Touch(step, json.RawMessage(data), at)
	return d
}

func (s *RedisStoreSuite) TestUpsertAndFind() {
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.store.Upsert(ctx, makeDraft("sess-1", 1, `{"point_of_contact":{}}`, created)))
	saved := created.Add(time.Second)
	s.Require().NoError(s.store.Upsert(ctx, makeDraft("sess-1", 2, `{"company_info":{}}`, saved)))

	found, err := s.store.FindBySession(ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(2, found.CurrentStep)
	s.JSONEq(`{"company_info":{}}`, string(found.FormData))
	s.True(created.Equal(found.CreatedAt))
	s.True(saved.Equal(found.LastSavedAt))
}

func (s *RedisStoreSuite) TestOlderSaveLoses() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.store.Upsert(ctx, makeDraft("sess-1", 3, `{"v":"new"}`, now)))
	s.Require().NoError(s.store.Upsert(ctx, makeDraft("sess-1", 1, `{"v":"old"}`, now.Add(-time.Minute))))

	found, err := s.store.FindBySession(ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(3, found.CurrentStep)
}

func (s *RedisStoreSuite) TestFindMissing() {
	_, err := s.store.FindBySession(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestCleanupRemovesOnlyStaleDrafts() {
	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -7)
	for i := 0; i < 1200; i++ {
		s.Require().NoError(s.store.Upsert(ctx, makeDraft(fmt.Sprintf("stale-%d", i), 1, `{}`, cutoff.Add(-time.Hour))))
	}
	s.Require().NoError(s.store.Upsert(ctx, makeDraft("fresh", 1, `{}`, now)))

	removed, err := s.store.DeleteSavedBefore(ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(int64(1200), removed)

	count, err := s.store.CountSavedSince(ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
	_, err = s.store.FindBySession(ctx, "fresh")
	s.NoError(err)
	_, err = s.store.FindBySession(ctx, "stale-0")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindBySession(ctx, "stale-1199")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestConcurrentSavesKeepLatest() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)
	const writers = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(step int) {
			defer wg.Done()
			at := base.Add(time.Duration(step) * time.Millisecond)
			_ = s.store.Upsert(ctx, makeDraft("sess-race", step%4+1, fmt.Sprintf(`{"n":%d}`, step), at))
		}(i)
	}
	wg.Wait()

	found, err := s.store.FindBySession(ctx, "sess-race")
	s.Require().NoError(err)
	s.JSONEq(fmt.Sprintf(`{"n":%d}`, writers-1), string(found.FormData))
}
