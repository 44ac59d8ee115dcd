package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/segmentio/kafka-go"
)

type DefaultKafkaPublisher struct {
	writer *kafka.Writer
}

// NewDefaultKafkaPublisher returns an async publisher: Publish only enqueues,
// delivery failures are reported through the logger.
func NewDefaultKafkaPublisher(brokers []string, logger *slog.Logger) *DefaultKafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			Async:        true,
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Error("Failed to deliver kafka messages", "count", len(messages), "error", err)
				}
			},
		},
	}
}

func (k *DefaultKafkaPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	return k.writer.WriteMessages(ctx, toKafkaMessages(topic, time.Now(), msgs)...)
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}

func toKafkaMessages(topic string, now time.Time, msgs []domain.Message) []kafka.Message {
	km := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Topic: topic,
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
		})
	}
	return km
}
