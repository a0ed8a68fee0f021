package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/wms-platform/fulfillment/pkg/logging"
)

// KafkaConfig holds Kafka connection settings for the work queues
type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
	TopicPrefix   string

	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int

	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	CommitInterval time.Duration
}

// DefaultKafkaConfig returns a KafkaConfig with sensible defaults
func DefaultKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "fulfillment-workers",
		TopicPrefix:   "fulfillment.work.",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,

		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 5 * time.Second,
	}
}

func (c *KafkaConfig) topic(queue string) string {
	return c.TopicPrefix + queue
}

// KafkaPublisher publishes work messages onto per-queue Kafka topics
type KafkaPublisher struct {
	config  *KafkaConfig
	mu      sync.Mutex
	writers map[string]*kafkago.Writer
}

// NewKafkaPublisher creates a KafkaPublisher
func NewKafkaPublisher(config *KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		config:  config,
		writers: make(map[string]*kafkago.Writer),
	}
}

func (p *KafkaPublisher) getWriter(queue string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[queue]; exists {
		return writer
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(p.config.Brokers...),
		Topic:        p.config.topic(queue),
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafkago.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}
	p.writers[queue] = writer
	return writer
}

// Publish marshals payload and writes it to the queue's topic
func (p *KafkaPublisher) Publish(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for queue %s: %w", queue, err)
	}

	msg := Message{
		ID:         uuid.NewString(),
		Queue:      queue,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message for queue %s: %w", queue, err)
	}

	err = p.getWriter(queue).WriteMessages(ctx, kafkago.Message{
		Key:   []byte(msg.ID),
		Value: value,
		Time:  msg.EnqueuedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}
	return nil
}

// Close closes all topic writers
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// KafkaConsumer runs one blocking reader per subscribed queue
type KafkaConsumer struct {
	config   *KafkaConfig
	logger   *logging.Logger
	mu       sync.Mutex
	readers  map[string]*kafkago.Reader
	handlers map[string]Handler
}

// NewKafkaConsumer creates a KafkaConsumer
func NewKafkaConsumer(config *KafkaConfig, logger *logging.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		config:   config,
		logger:   logger.WithComponent("queue.consumer"),
		readers:  make(map[string]*kafkago.Reader),
		handlers: make(map[string]Handler),
	}
}

// Subscribe registers the handler for a queue. Must be called before Start.
func (c *KafkaConsumer) Subscribe(queue string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[queue] = handler
}

func (c *KafkaConsumer) getReader(queue string) *kafkago.Reader {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reader, exists := c.readers[queue]; exists {
		return reader
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        c.config.Brokers,
		GroupID:        c.config.ConsumerGroup,
		Topic:          c.config.topic(queue),
		MinBytes:       c.config.MinBytes,
		MaxBytes:       c.config.MaxBytes,
		MaxWait:        c.config.MaxWait,
		CommitInterval: c.config.CommitInterval,
	})
	c.readers[queue] = reader
	return reader
}

// Start consumes all subscribed queues until ctx is cancelled
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	queues := make([]string, 0, len(c.handlers))
	for queue := range c.handlers {
		queues = append(queues, queue)
	}
	c.mu.Unlock()

	for _, queue := range queues {
		go c.consumeQueue(ctx, queue)
	}

	<-ctx.Done()
	return ctx.Err()
}

func (c *KafkaConsumer) consumeQueue(ctx context.Context, queue string) {
	reader := c.getReader(queue)
	handler := c.handlers[queue]
	logger := c.logger.WithQueue(queue)

	logger.Info("Starting queue consumer", "topic", c.config.topic(queue), "group", c.config.ConsumerGroup)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping queue consumer")
			return
		default:
		}

		kmsg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.WithError(err).Error("Failed to fetch message")
			continue
		}

		var msg Message
		if err := json.Unmarshal(kmsg.Value, &msg); err != nil {
			logger.WithError(err).Error("Failed to decode message, skipping")
			_ = reader.CommitMessages(ctx, kmsg)
			continue
		}

		if err := handler(ctx, msg); err != nil {
			// Uncommitted: the message is redelivered (at-least-once)
			logger.WithError(err).Error("Handler failed, message will be redelivered", "messageId", msg.ID)
			continue
		}

		if err := reader.CommitMessages(ctx, kmsg); err != nil {
			logger.WithError(err).Error("Failed to commit message", "messageId", msg.ID)
		}
	}
}

// Close closes all queue readers
func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
