package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher publishes domain events onto a single event topic, keyed by
// event type so consumers can partition by stream
type KafkaPublisher struct {
	writer *kafkago.Writer
	source string
}

// KafkaPublisherConfig holds event publisher settings
type KafkaPublisherConfig struct {
	Brokers []string
	Topic   string
	Source  string
}

// DefaultKafkaPublisherConfig returns defaults for the event stream
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "fulfillment.events",
		Source:  "/fulfillment",
	}
}

// NewKafkaPublisher creates a KafkaPublisher
func NewKafkaPublisher(config *KafkaPublisherConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(config.Brokers...),
			Topic:        config.Topic,
			Balancer:     &kafkago.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
		source: config.Source,
	}
}

// Publish wraps the event in an Envelope and writes it
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	envelope := Envelope{
		ID:         uuid.NewString(),
		Type:       event.EventType(),
		Source:     p.source,
		OccurredAt: event.OccurredAt(),
		Data:       event,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.EventType()),
		Value: data,
		Time:  envelope.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(event.EventType())},
			{Key: "event-id", Value: []byte(envelope.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
	}
	return nil
}

// PublishAll publishes events in order, stopping at the first failure
func (p *KafkaPublisher) PublishAll(ctx context.Context, evts []Event) error {
	for _, event := range evts {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
