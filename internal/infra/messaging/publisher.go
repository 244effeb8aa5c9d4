package messaging

import (
	"context"
	"log/slog"
	"strconv"

	"gin-checkout-core/internal/pkg/config"
	"gin-checkout-core/internal/pkg/errs"
	"gin-checkout-core/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
)

// Publisher hands order events to a broker. Publish returns only after the
// broker acknowledged the whole batch.
type Publisher interface {
	Publish(ctx context.Context, events []shared.OrderEvent) error
	Close() error
}

func NewPublisher(cfg config.KafkaConfig) Publisher {
	if !cfg.Enabled() {
		slog.Info("kafka disabled, order events will only be logged")
		return &LogPublisher{}
	}
	return NewKafkaPublisher(cfg.Brokers, cfg.OrderTopic)
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

// Messages are keyed by order id so all events of one order land on one partition.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events []shared.OrderEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, toMessage(e))
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return errs.Wrap(err, "failed to write order events to kafka")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e shared.OrderEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(e.OrderID, 10)),
		Value: e.Payload,
		Time:  e.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID.String())},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
}

// LogPublisher is used when no brokers are configured.
type LogPublisher struct{}

func (p *LogPublisher) Publish(ctx context.Context, events []shared.OrderEvent) error {
	for _, e := range events {
		slog.InfoContext(ctx, "order event",
			"event_id", e.ID.String(),
			"event_type", e.Type,
			"order_id", e.OrderID)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
