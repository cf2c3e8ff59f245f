package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formation/internal/platform/config"
)

func TestNewProducerDisabledWithoutBrokers(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{AuditTopic: "formation.audit"})
	require.NoError(t, err)
	assert.Nil(t, p)
}
