package domain

import "time"

// OrderPackedEvent is emitted when an order's manifest is recorded
type OrderPackedEvent struct {
	OrderNumber string    `json:"orderNumber"`
	SlipNumber  string    `json:"slipNumber"`
	Packages    int       `json:"packages"`
	WeightKg    float64   `json:"weightKg"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e OrderPackedEvent) EventType() string     { return "fulfillment.order.packed" }
func (e OrderPackedEvent) OccurredAt() time.Time { return e.Timestamp }
