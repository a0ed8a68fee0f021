package domain

import "time"

// OrderCreatedEvent is published when an order enters the pipeline
type OrderCreatedEvent struct {
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	Priority    Priority  `json:"priority"`
	TotalValue  float64   `json:"totalValue"`
	Lines       int       `json:"lines"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e OrderCreatedEvent) EventType() string     { return "fulfillment.order.created" }
func (e OrderCreatedEvent) OccurredAt() time.Time { return e.Timestamp }

// OrderValidatedEvent is published after successful validation
type OrderValidatedEvent struct {
	OrderNumber string    `json:"orderNumber"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e OrderValidatedEvent) EventType() string     { return "fulfillment.order.validated" }
func (e OrderValidatedEvent) OccurredAt() time.Time { return e.Timestamp }

// OrderValidationFailedEvent carries the structured issues
type OrderValidationFailedEvent struct {
	OrderNumber string            `json:"orderNumber"`
	Issues      []ValidationIssue `json:"issues"`
	Timestamp   time.Time         `json:"timestamp"`
}

func (e OrderValidationFailedEvent) EventType() string     { return "fulfillment.order.validation_failed" }
func (e OrderValidationFailedEvent) OccurredAt() time.Time { return e.Timestamp }

// OrderAllocatedEvent reports the post-allocation status
type OrderAllocatedEvent struct {
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (e OrderAllocatedEvent) EventType() string     { return "fulfillment.order.allocated" }
func (e OrderAllocatedEvent) OccurredAt() time.Time { return e.Timestamp }

// OrderCancelledEvent is published when an order is cancelled
type OrderCancelledEvent struct {
	OrderNumber string    `json:"orderNumber"`
	Reason      string    `json:"reason,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e OrderCancelledEvent) EventType() string     { return "fulfillment.order.cancelled" }
func (e OrderCancelledEvent) OccurredAt() time.Time { return e.Timestamp }

// OrderStatusChangedEvent is the generic progress event used by the later
// pipeline stages (picking, packing, shipping)
type OrderStatusChangedEvent struct {
	OrderNumber string      `json:"orderNumber"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (e OrderStatusChangedEvent) EventType() string     { return "fulfillment.order.status_changed" }
func (e OrderStatusChangedEvent) OccurredAt() time.Time { return e.Timestamp }
