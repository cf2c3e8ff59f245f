//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"formation/internal/platform/config"
	"formation/pkg/testutil/containers"
)

func TestProducerRoundTrip(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	p, err := NewProducer(config.KafkaConfig{Brokers: []string{broker.Seed}, AuditTopic: "formation.audit.test"})
	require.NoError(t, err)
	defer p.Close(ctx)

	require.NoError(t, p.Ping(ctx))
	require.NoError(t, p.EnsureTopic(ctx, 1, 1))
	require.NoError(t, p.EnsureTopic(ctx, 1, 1), "second call tolerates an existing topic")
	require.NoError(t, p.Publish(ctx, []byte("BVI-2026-ABC123"), []byte(`{"action":"application_submitted"}`)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Seed),
		kgo.ConsumeTopics("formation.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "BVI-2026-ABC123", string(records[0].Key))
}
