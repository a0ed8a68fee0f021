package events

import (
	"context"
	"sync"
	"time"
)

// Event is implemented by every domain event the engine emits
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// Publisher is the fire-and-forget signaling port used for cross-component
// notification and audit logging
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	PublishAll(ctx context.Context, evts []Event) error
}

// Envelope is the wire shape a published event is wrapped in
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Recorder is an in-memory Publisher used in tests
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) PublishAll(ctx context.Context, evts []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	return nil
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns recorded events matching the given event type
func (r *Recorder) OfType(eventType string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
