package domain

import "time"

// ShipmentCreatedEvent is emitted when a carrier has been selected
type ShipmentCreatedEvent struct {
	ShipmentID  string       `json:"shipmentId"`
	OrderNumber string       `json:"orderNumber"`
	CarrierID   string       `json:"carrierId"`
	Level       ServiceLevel `json:"serviceLevel"`
	CostUSD     float64      `json:"costUsd"`
	Timestamp   time.Time    `json:"timestamp"`
}

func (e ShipmentCreatedEvent) EventType() string     { return "fulfillment.shipment.created" }
func (e ShipmentCreatedEvent) OccurredAt() time.Time { return e.Timestamp }

// ShipmentManifestedEvent is emitted once labels and tracking numbers exist
type ShipmentManifestedEvent struct {
	ShipmentID      string    `json:"shipmentId"`
	OrderNumber     string    `json:"orderNumber"`
	TrackingNumbers []string  `json:"trackingNumbers"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e ShipmentManifestedEvent) EventType() string     { return "fulfillment.shipment.manifested" }
func (e ShipmentManifestedEvent) OccurredAt() time.Time { return e.Timestamp }

// ShipmentTrackedEvent is emitted per tracking update
type ShipmentTrackedEvent struct {
	ShipmentID string         `json:"shipmentId"`
	Status     ShipmentStatus `json:"status"`
	Location   string         `json:"location,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func (e ShipmentTrackedEvent) EventType() string     { return "fulfillment.shipment.tracked" }
func (e ShipmentTrackedEvent) OccurredAt() time.Time { return e.Timestamp }
