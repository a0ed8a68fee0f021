package domain

import "time"

// ReturnAuthorizedEvent is emitted when an RMA is created
type ReturnAuthorizedEvent struct {
	RMANumber   string    `json:"rmaNumber"`
	OrderNumber string    `json:"orderNumber"`
	Lines       int       `json:"lines"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e ReturnAuthorizedEvent) EventType() string     { return "fulfillment.return.authorized" }
func (e ReturnAuthorizedEvent) OccurredAt() time.Time { return e.Timestamp }

// RefundQueuedEvent hands the computed refund to payment reversal
type RefundQueuedEvent struct {
	RMANumber   string    `json:"rmaNumber"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	TotalRefund float64   `json:"totalRefund"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e RefundQueuedEvent) EventType() string     { return "fulfillment.return.refund_queued" }
func (e RefundQueuedEvent) OccurredAt() time.Time { return e.Timestamp }

// ReturnCompletedEvent is emitted when inspection finishes
type ReturnCompletedEvent struct {
	RMANumber   string    `json:"rmaNumber"`
	OrderNumber string    `json:"orderNumber"`
	Restocked   int       `json:"restockedUnits"`
	TotalRefund float64   `json:"totalRefund"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e ReturnCompletedEvent) EventType() string     { return "fulfillment.return.completed" }
func (e ReturnCompletedEvent) OccurredAt() time.Time { return e.Timestamp }
