// Package producer publishes activity events to the Kafka topic consumed by cmd/worker.
package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"employee-management/backend/internal/logs"
	"employee-management/backend/internal/telemetry/domain"
)

// writeTimeout bounds one Kafka write.
const writeTimeout = 5 * time.Second

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer is a telemetry.EventEmitter that writes each event as one JSON message.
// Messages are keyed by principal id so one account's activity stays ordered within a partition;
// events without a principal are keyed by type.
type KafkaProducer struct {
	writer messageWriter
	topic  string
}

// NewKafkaProducer returns a producer for topic, or nil when brokers or topic are empty.
// A nil *KafkaProducer is a valid no-op emitter.
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

// Emit writes event to the topic.
func (p *KafkaProducer) Emit(ctx context.Context, event *domain.Event) error {
	if p == nil || p.writer == nil || event == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := event.PrincipalID
	if key == "" {
		key = event.Type
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload, Time: event.CreatedAt}); err != nil {
		logs.With("telemetry").WithError(err).WithField("topic", p.topic).Warn("kafka write failed")
		return err
	}
	return nil
}

// Close flushes and closes the writer. It is safe on a nil producer.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
