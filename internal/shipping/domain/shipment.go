package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrInvalidTransition = errors.New("invalid shipment status transition")
	ErrNotManifested     = errors.New("shipment has no tracking numbers yet")
)

// ShipmentStatus is the shipment state machine
type ShipmentStatus string

const (
	ShipmentStatusCreated    ShipmentStatus = "created"
	ShipmentStatusManifested ShipmentStatus = "manifested"
	ShipmentStatusPickedUp   ShipmentStatus = "picked_up"
	ShipmentStatusInTransit  ShipmentStatus = "in_transit"
	ShipmentStatusDelivered  ShipmentStatus = "delivered"
	ShipmentStatusException  ShipmentStatus = "exception"
)

// MapCarrierStatus translates a carrier-reported status string into the
// shipment's own vocabulary. Unrecognized strings map to exception.
func MapCarrierStatus(carrierStatus string) ShipmentStatus {
	switch carrierStatus {
	case "PICKED_UP", "PICKUP", "ACCEPTED":
		return ShipmentStatusPickedUp
	case "IN_TRANSIT", "DEPARTED", "ARRIVED_AT_FACILITY", "OUT_FOR_DELIVERY":
		return ShipmentStatusInTransit
	case "DELIVERED":
		return ShipmentStatusDelivered
	}
	return ShipmentStatusException
}

// ShipmentPackage is one parcel on the shipment
type ShipmentPackage struct {
	PackageID      string  `bson:"packageId"`
	WeightKg       float64 `bson:"weightKg"`
	TrackingNumber string  `bson:"trackingNumber,omitempty"`
	LabelPath      string  `bson:"labelPath,omitempty"`
}

// TrackingEvent is one append-only entry in the shipment's history
type TrackingEvent struct {
	Timestamp     time.Time      `bson:"timestamp"`
	CarrierStatus string         `bson:"carrierStatus"`
	Status        ShipmentStatus `bson:"status"`
	Location      string         `bson:"location,omitempty"`
	Description   string         `bson:"description,omitempty"`
}

// Shipment carries one packed order with a selected carrier
type Shipment struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	ShipmentID            string             `bson:"shipmentId"`
	OrderNumber           string             `bson:"orderNumber"`
	CarrierID             string             `bson:"carrierId"`
	ServiceLevel          ServiceLevel       `bson:"serviceLevel"`
	Packages              []ShipmentPackage  `bson:"packages"`
	Status                ShipmentStatus     `bson:"status"`
	CostUSD               float64            `bson:"costUsd"`
	CurrentLocation       string             `bson:"currentLocation,omitempty"`
	TrackingEvents        []TrackingEvent    `bson:"trackingEvents,omitempty"`
	EstimatedDeliveryDate *time.Time         `bson:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time         `bson:"actualDeliveryDate,omitempty"`
	CreatedAt             time.Time          `bson:"createdAt"`
}

// NewShipment creates a shipment awaiting its labels
func NewShipment(shipmentID, orderNumber, carrierID string, level ServiceLevel, packages []ShipmentPackage) (*Shipment, error) {
	if len(packages) == 0 {
		return nil, errors.New("shipment requires at least one package")
	}
	return &Shipment{
		ShipmentID:   shipmentID,
		OrderNumber:  orderNumber,
		CarrierID:    carrierID,
		ServiceLevel: level,
		Packages:     packages,
		Status:       ShipmentStatusCreated,
		CreatedAt:    time.Now(),
	}, nil
}

// Manifest stamps tracking numbers and label paths onto the packages and
// moves the shipment to manifested. One entry per package, in order.
func (s *Shipment) Manifest(trackingNumbers, labelPaths []string) error {
	if s.Status != ShipmentStatusCreated {
		return ErrInvalidTransition
	}
	if len(trackingNumbers) != len(s.Packages) || len(labelPaths) != len(s.Packages) {
		return errors.New("one tracking number and label per package required")
	}
	for i := range s.Packages {
		s.Packages[i].TrackingNumber = trackingNumbers[i]
		s.Packages[i].LabelPath = labelPaths[i]
	}
	s.Status = ShipmentStatusManifested
	return nil
}

// RecordTracking appends a tracking event and advances the shipment status.
// The event log is append-only; a delivered event stamps the actual delivery
// date. Events arriving after delivery are recorded but change nothing.
func (s *Shipment) RecordTracking(event TrackingEvent) error {
	if s.Status == ShipmentStatusCreated {
		return ErrNotManifested
	}
	s.TrackingEvents = append(s.TrackingEvents, event)
	if event.Location != "" {
		s.CurrentLocation = event.Location
	}
	if s.Status == ShipmentStatusDelivered {
		return nil
	}

	s.Status = event.Status
	if event.Status == ShipmentStatusDelivered {
		at := event.Timestamp
		s.ActualDeliveryDate = &at
	}
	return nil
}

// TotalWeightKg sums package weights
func (s *Shipment) TotalWeightKg() float64 {
	total := 0.0
	for _, pkg := range s.Packages {
		total += pkg.WeightKg
	}
	return total
}
