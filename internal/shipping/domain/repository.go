package domain

import "context"

// CarrierRepository persists carriers
type CarrierRepository interface {
	Save(ctx context.Context, carrier *Carrier) error
	FindByCarrierID(ctx context.Context, carrierID string) (*Carrier, error)
	FindActive(ctx context.Context) ([]*Carrier, error)
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	Save(ctx context.Context, shipment *Shipment) error
	FindByShipmentID(ctx context.Context, shipmentID string) (*Shipment, error)
	FindByOrder(ctx context.Context, orderNumber string) (*Shipment, error)
}
