package inviter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"roster/internal/invite/models"
	"roster/pkg/platform/sentinel"
)

// Producer is the part of *kgo.Client the inviter uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaInviter publishes each batch as one JSON record keyed by org, so all
// of an organization's invitations land on one partition in order.
type KafkaInviter struct {
	producer Producer
	topic    string
}

func NewKafka(producer Producer, topic string) *KafkaInviter {
	return &KafkaInviter{producer: producer, topic: topic}
}

func (k *KafkaInviter) Invite(ctx context.Context, batch models.InvitationBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode invitation batch: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(batch.OrgID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "batch_id", Value: []byte(batch.ID)},
			{Key: "request_id", Value: []byte(batch.RequestID)},
		},
	}
	if err := k.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish invitation batch: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
