package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/logger"
	"walk-scheduler/internal/ports"
)

// KafkaNotifier implements ports.Notifier on a Kafka topic. Customer
// notification delivery is handled by downstream consumers; this adapter
// only guarantees the event reaches the broker.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

var _ ports.Notifier = (*KafkaNotifier)(nil)

// envelope is the wire format shared by all published events.
type envelope struct {
	ID        uuid.UUID        `json:"id"`
	Type      domain.EventType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      any              `json:"data"`
}

func NewKafkaNotifier(brokers []string, topic string, log *logger.Logger) (*KafkaNotifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &KafkaNotifier{producer: producer, topic: topic, log: log}, nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

func (n *KafkaNotifier) PublishBookingGrouped(ctx context.Context, ev domain.BookingGroupedEvent) error {
	return n.publish(ctx, domain.EventBookingGrouped, ev)
}

func (n *KafkaNotifier) PublishSlotStatusChanged(ctx context.Context, ev domain.SlotStatusChangedEvent) error {
	return n.publish(ctx, domain.EventSlotStatusChanged, ev)
}

func (n *KafkaNotifier) publish(ctx context.Context, eventType domain.EventType, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := envelope{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", eventType, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(env.ID.String()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
			{Key: []byte("timestamp"), Value: []byte(env.Timestamp.Format(time.RFC3339))},
		},
	}

	partition, offset, err := n.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send event %s to topic %s: %w", eventType, n.topic, err)
	}

	n.log.WithField("topic", n.topic).
		WithField("partition", partition).
		WithField("offset", offset).
		WithField("event_type", eventType).
		Debug("Event published")

	return nil
}
