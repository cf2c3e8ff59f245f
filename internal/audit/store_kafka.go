package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// Producer publishes a keyed message to the audit topic.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaStore serializes events as JSON and publishes them keyed by subject,
// so every event for one application lands on the same partition in order.
type KafkaStore struct {
	producer Producer
}

func NewKafkaStore(producer Producer) *KafkaStore {
	return &KafkaStore{producer: producer}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	key := event.Subject
	if key == "" {
		key = string(event.Action)
	}
	if err := s.producer.Publish(ctx, []byte(key), value); err != nil {
		return fmt.Errorf("publish audit event %s: %w", event.Action, err)
	}
	return nil
}
