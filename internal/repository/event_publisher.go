package repository

import (
	"context"

	"RiskReturn/internal/domain/models"
	pkgkafka "RiskReturn/pkg/kafka"
)

// KafkaEventPublisher writes analysis events keyed by period.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaEventPublisher(p *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topic: topic}
}

func (k *KafkaEventPublisher) PublishAnalysisCompleted(ctx context.Context, ev *models.AnalysisCompletedEvent) error {
	return k.producer.Publish(ctx, k.topic, []byte(ev.Period), ev)
}

// Close is a no-op: the producer is shared with log shipping and closed by its owner.
func (k *KafkaEventPublisher) Close() error { return nil }

// NoopEventPublisher is used when Kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishAnalysisCompleted(context.Context, *models.AnalysisCompletedEvent) error {
	return nil
}

func (NoopEventPublisher) Close() error { return nil }
