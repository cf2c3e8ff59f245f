package draft

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"formation/internal/formation/models"
	"formation/pkg/platform/sentinel"
)

// Every key shares the {draft} hash tag so the multi-key scripts below stay
// in one slot on Redis Cluster.
const (
	// Hash per draft: {draft}:session:<session_id>
	sessionKeyPrefix = "{draft}:session:"
	// Sorted set of session ids scored by last save in unix milliseconds.
	savedAtIndexKey = "{draft}:saved_at"

	cleanupBatchSize = 500
)

// upsertScript writes the draft hash and index entry in one step. A save
// whose timestamp is older than the stored one is dropped.
var upsertScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'last_saved_at_ms')
if current and tonumber(current) > tonumber(ARGV[3]) then
	return 0
end
redis.call('HSETNX', KEYS[1], 'created_at', ARGV[5])
redis.call('HSET', KEYS[1],
	'current_step', ARGV[1],
	'form_data', ARGV[2],
	'last_saved_at_ms', ARGV[3],
	'last_saved_at', ARGV[4],
	'updated_at', ARGV[6])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[7])
return 1
`)

// deleteScript removes the listed drafts whose score is still below the
// cutoff, so a save racing the cleanup survives.
//
// KEYS[1] index, KEYS[i] draft hash of ARGV[i] for i > 1; ARGV[1] cutoff_ms
var deleteScript = redis.NewScript(`
local removed = 0
for i = 2, #KEYS do
	local sessionID = ARGV[i]
	local score = redis.call('ZSCORE', KEYS[1], sessionID)
	if score and tonumber(score) < tonumber(ARGV[1]) then
		redis.call('DEL', KEYS[i])
		redis.call('ZREM', KEYS[1], sessionID)
		removed = removed + 1
	end
end
return removed
`)

// RedisStore keeps drafts in Redis hashes with a sorted-set index on save time
// so cleanup never scans the keyspace.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (s *RedisStore) Upsert(ctx context.Context, d *models.Draft) error {
	err := upsertScript.Run(ctx, s.client,
		[]string{sessionKey(d.SessionID), savedAtIndexKey},
		d.CurrentStep,
		string(d.FormData),
		d.LastSavedAt.UnixMilli(),
		d.LastSavedAt.UTC().Format(time.RFC3339Nano),
		d.CreatedAt.UTC().Format(time.RFC3339Nano),
		d.UpdatedAt.UTC().Format(time.RFC3339Nano),
		d.SessionID,
	).Err()
	if err != nil {
		return fmt.Errorf("upsert draft: %w", err)
	}
	return nil
}

func (s *RedisStore) FindBySession(ctx context.Context, sessionID string) (*models.Draft, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("find draft: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	d, err := decodeDraft(sessionID, fields)
	if err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

func decodeDraft(sessionID string, fields map[string]string) (*models.Draft, error) {
	step, err := strconv.Atoi(fields["current_step"])
	if err != nil {
		return nil, fmt.Errorf("current_step: %w", err)
	}
	d := &models.Draft{
		SessionID:   sessionID,
		CurrentStep: step,
		FormData:    []byte(fields["form_data"]),
	}
	for name, dst := range map[string]*time.Time{
		"last_saved_at": &d.LastSavedAt,
		"created_at":    &d.CreatedAt,
		"updated_at":    &d.UpdatedAt,
	} {
		parsed, err := time.Parse(time.RFC3339Nano, fields[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		*dst = parsed
	}
	return d, nil
}

// DeleteSavedBefore removes drafts saved strictly before cutoff, in batches.
func (s *RedisStore) DeleteSavedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UnixMilli()
	maxScore := "(" + strconv.FormatInt(cutoffMs, 10)
	var removed int64
	for {
		ids, err := s.client.ZRangeByScore(ctx, savedAtIndexKey, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   maxScore,
			Count: cleanupBatchSize,
		}).Result()
		if err != nil {
			return removed, fmt.Errorf("list stale drafts: %w", err)
		}
		if len(ids) == 0 {
			return removed, nil
		}

		keys := make([]string, 0, len(ids)+1)
		keys = append(keys, savedAtIndexKey)
		args := make([]any, 0, len(ids)+1)
		args = append(args, cutoffMs)
		for _, sessionID := range ids {
			keys = append(keys, sessionKey(sessionID))
			args = append(args, sessionID)
		}
		n, err := deleteScript.Run(ctx, s.client, keys, args...).Int64()
		if err != nil {
			return removed, fmt.Errorf("delete stale drafts: %w", err)
		}
		removed += n
		if len(ids) < cleanupBatchSize {
			return removed, nil
		}
	}
}

func (s *RedisStore) CountSavedSince(ctx context.Context, since time.Time) (int64, error) {
	count, err := s.client.ZCount(ctx, savedAtIndexKey, strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count recent drafts: %w", err)
	}
	return count, nil
}
