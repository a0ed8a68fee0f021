package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process queue backed by channels, used in tests and for
// single-node deployments. It satisfies both Publisher and Consumer.
type Memory struct {
	mu       sync.Mutex
	channels map[string]chan Message
	handlers map[string]Handler
	buffer   int
}

// NewMemory creates an in-memory queue with the given per-queue buffer
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 256
	}
	return &Memory{
		channels: make(map[string]chan Message),
		handlers: make(map[string]Handler),
		buffer:   buffer,
	}
}

func (m *Memory) channel(queue string) chan Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, exists := m.channels[queue]; exists {
		return ch
	}
	ch := make(chan Message, m.buffer)
	m.channels[queue] = ch
	return ch
}

// Publish marshals payload and enqueues it
func (m *Memory) Publish(ctx context.Context, queue string, payload any) error {
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

	select {
	case m.channel(queue) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers the handler for a queue
func (m *Memory) Subscribe(queue string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[queue] = handler
}

// Start consumes all subscribed queues until ctx is cancelled
func (m *Memory) Start(ctx context.Context) error {
	m.mu.Lock()
	queues := make([]string, 0, len(m.handlers))
	for queue := range m.handlers {
		queues = append(queues, queue)
	}
	m.mu.Unlock()

	for _, queue := range queues {
		ch := m.channel(queue)
		handler := m.handlers[queue]
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-ch:
					if err := handler(ctx, msg); err != nil {
						// Redeliver on failure (at-least-once)
						select {
						case ch <- msg:
						default:
						}
					}
				}
			}
		}()
	}

	<-ctx.Done()
	return ctx.Err()
}

// Close is a no-op for the in-memory queue
func (m *Memory) Close() error { return nil }

// Depth reports the number of buffered messages on a queue
func (m *Memory) Depth(queue string) int {
	return len(m.channel(queue))
}

// Drain synchronously processes up to limit messages from one queue using the
// subscribed handler. Tests use this to step the pipeline deterministically.
func (m *Memory) Drain(ctx context.Context, queue string, limit int) (int, error) {
	m.mu.Lock()
	handler := m.handlers[queue]
	m.mu.Unlock()
	if handler == nil {
		return 0, fmt.Errorf("no handler subscribed for queue %s", queue)
	}

	ch := m.channel(queue)
	processed := 0
	for processed < limit {
		select {
		case msg := <-ch:
			if err := handler(ctx, msg); err != nil {
				return processed, err
			}
			processed++
		default:
			return processed, nil
		}
	}
	return processed, nil
}
