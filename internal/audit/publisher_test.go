package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formation/pkg/requestcontext"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.109 Safari/537.36"

func TestPublisherEnrichesFromContext(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithAdminSubject(ctx, "reviewer@formation")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", chromeOnMac)

	require.NoError(t, pub.Emit(ctx, Event{
		Action:  EventApplicationStatusChanged,
		Subject: "BVI-2026-ABC123",
		Status:  "under_review",
	}))

	events := store.List()
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, CategoryCompliance, e.Category)
	assert.Equal(t, fixed, e.Timestamp)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, "reviewer@formation", e.ActorID)
	assert.Contains(t, e.Client, "Chrome 120")
}

func TestPublisherKeepsExplicitFields(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(context.Background(), Event{
		Action:    EventDraftsCleaned,
		Timestamp: ts,
		Count:     3,
		RequestID: "job",
	}))

	e := store.ListByAction(EventDraftsCleaned)[0]
	assert.Equal(t, ts, e.Timestamp)
	assert.Equal(t, CategoryOperations, e.Category)
	assert.Equal(t, "job", e.RequestID)
	assert.Empty(t, e.Client)
}

func TestDescribeClient(t *testing.T) {
	assert.Equal(t, "", DescribeClient(""))
	assert.Contains(t, DescribeClient(chromeOnMac), "/ Intel Mac OS X")
	assert.Contains(t, DescribeClient("Googlebot/2.1 (+http://www.google.com/bot.html)"), "bot")
}

type fakeProducer struct {
	keys   []string
	values [][]byte
	err    error
}

func (p *fakeProducer) Publish(_ context.Context, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

func TestKafkaStoreKeysBySubject(t *testing.T) {
	producer := &fakeProducer{}
	store := NewKafkaStore(producer)

	require.NoError(t, store.Append(context.Background(), Event{Action: EventApplicationSubmitted, Subject: "BVI-2026-ABC123", Status: "submitted"}))
	require.NoError(t, store.Append(context.Background(), Event{Action: EventDraftsCleaned, Count: 4}))

	assert.Equal(t, []string{"BVI-2026-ABC123", "drafts_cleaned"}, producer.keys)
	var decoded Event
	require.NoError(t, json.Unmarshal(producer.values[0], &decoded))
	assert.Equal(t, EventApplicationSubmitted, decoded.Action)
	assert.Equal(t, "submitted", decoded.Status)
}

func TestKafkaStorePropagatesPublishError(t *testing.T) {
	store := NewKafkaStore(&fakeProducer{err: errors.New("broker down")})
	err := store.Append(context.Background(), Event{Action: EventApplicationDeleted})
	assert.ErrorContains(t, err, "broker down")
}

type failingStore struct{ calls int }

func (s *failingStore) Append(context.Context, Event) error {
	s.calls++
	return errors.New("sink unavailable")
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.Append(context.Background(), Event{Action: EventApplicationSubmitted}))
	require.NoError(t, q.Append(context.Background(), Event{Action: EventApplicationSubmitted}))
	assert.Equal(t, int64(1), q.Dropped())
}

func TestWorkerDrainsOnShutdown(t *testing.T) {
	q := NewQueue(8)
	sink := NewInMemoryStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Append(context.Background(), Event{Action: EventApplicationSubmitted}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorker(sink, q, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, w.Run(ctx))

	assert.Len(t, sink.List(), 3)
}

func TestWorkerSkipsFailedDeliveries(t *testing.T) {
	q := NewQueue(8)
	sink := &failingStore{}
	require.NoError(t, q.Append(context.Background(), Event{Action: EventApplicationSubmitted}))
	require.NoError(t, q.Append(context.Background(), Event{Action: EventApplicationDeleted}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewWorker(sink, q, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 2, sink.calls)
}
