package queue

import (
	"context"
	"time"
)

// Named work queues consumed by the fulfillment engine. Delivery is
// at-least-once; no ordering is guaranteed across queues.
const (
	Validation  = "validation"
	Allocation  = "allocation"
	Picking     = "picking"
	PutAway     = "putaway"
	Packing     = "packing"
	Shipping    = "shipping"
	Returns     = "returns"
	Maintenance = "maintenance"
	Exceptions  = "exceptions"
)

// All lists every queue the engine consumes, in pipeline order
func All() []string {
	return []string{
		Validation, Allocation, Picking, PutAway, Packing,
		Shipping, Returns, Maintenance, Exceptions,
	}
}

// Message is a single unit of work popped from a queue
type Message struct {
	ID         string    `json:"id"`
	Queue      string    `json:"queue"`
	Payload    []byte    `json:"payload"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Publisher pushes work onto a named queue
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

// Handler processes one message. Returning an error leaves the message
// uncommitted so it is redelivered.
type Handler func(ctx context.Context, msg Message) error

// Consumer runs one blocking handler per subscribed queue
type Consumer interface {
	Subscribe(queue string, handler Handler)
	Start(ctx context.Context) error
	Close() error
}
