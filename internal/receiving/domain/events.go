package domain

import "time"

// ASNScheduledEvent is published when a dock appointment is booked
type ASNScheduledEvent struct {
	ASNNumber   string    `json:"asnNumber"`
	Door        string    `json:"door"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e ASNScheduledEvent) EventType() string     { return "fulfillment.receiving.asn_scheduled" }
func (e ASNScheduledEvent) OccurredAt() time.Time { return e.Timestamp }

// ReceiptCompletedEvent reports a finished receiving session
type ReceiptCompletedEvent struct {
	ReceiptNumber string        `json:"receiptNumber"`
	ASNNumber     string        `json:"asnNumber"`
	Status        ReceiptStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
}

func (e ReceiptCompletedEvent) EventType() string     { return "fulfillment.receiving.receipt_completed" }
func (e ReceiptCompletedEvent) OccurredAt() time.Time { return e.Timestamp }

// DiscrepancyOpenedEvent reports an over/short receipt line
type DiscrepancyOpenedEvent struct {
	ReportID      string          `json:"reportId"`
	ReceiptNumber string          `json:"receiptNumber"`
	SKU           string          `json:"sku"`
	Expected      int             `json:"expected"`
	Actual        int             `json:"actual"`
	Type          DiscrepancyType `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
}

func (e DiscrepancyOpenedEvent) EventType() string     { return "fulfillment.receiving.discrepancy_opened" }
func (e DiscrepancyOpenedEvent) OccurredAt() time.Time { return e.Timestamp }

// PutAwayCreatedEvent reports a new put-away task with its placement
type PutAwayCreatedEvent struct {
	TaskID       string    `json:"taskId"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	FromLocation string    `json:"fromLocation"`
	ToLocation   string    `json:"toLocation"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e PutAwayCreatedEvent) EventType() string     { return "fulfillment.receiving.putaway_created" }
func (e PutAwayCreatedEvent) OccurredAt() time.Time { return e.Timestamp }
