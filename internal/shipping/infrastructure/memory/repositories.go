package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/shipping/domain"
)

// CarrierRepository is an in-memory adapter used by tests
type CarrierRepository struct {
	mu       sync.RWMutex
	carriers map[string]*domain.Carrier
}

// NewCarrierRepository creates an empty repository
func NewCarrierRepository() *CarrierRepository {
	return &CarrierRepository{carriers: make(map[string]*domain.Carrier)}
}

func (r *CarrierRepository) Save(ctx context.Context, carrier *domain.Carrier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carriers[carrier.CarrierID] = copyCarrier(carrier)
	return nil
}

func (r *CarrierRepository) FindByCarrierID(ctx context.Context, carrierID string) (*domain.Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	carrier, ok := r.carriers[carrierID]
	if !ok {
		return nil, nil
	}
	return copyCarrier(carrier), nil
}

func (r *CarrierRepository) FindActive(ctx context.Context) ([]*domain.Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Carrier
	for _, carrier := range r.carriers {
		if carrier.Active {
			result = append(result, copyCarrier(carrier))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CarrierID < result[j].CarrierID
	})
	return result, nil
}

func copyCarrier(carrier *domain.Carrier) *domain.Carrier {
	copied := *carrier
	copied.ServiceAreas = append([]string(nil), carrier.ServiceAreas...)
	copied.TransitDays = make(map[domain.ServiceLevel]int, len(carrier.TransitDays))
	for level, days := range carrier.TransitDays {
		copied.TransitDays[level] = days
	}
	return &copied
}

// ShipmentRepository is an in-memory adapter used by tests
type ShipmentRepository struct {
	mu        sync.RWMutex
	shipments map[string]*domain.Shipment
}

// NewShipmentRepository creates an empty repository
func NewShipmentRepository() *ShipmentRepository {
	return &ShipmentRepository{shipments: make(map[string]*domain.Shipment)}
}

func (r *ShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shipments[shipment.ShipmentID] = copyShipment(shipment)
	return nil
}

func (r *ShipmentRepository) FindByShipmentID(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shipment, ok := r.shipments[shipmentID]
	if !ok {
		return nil, nil
	}
	return copyShipment(shipment), nil
}

func (r *ShipmentRepository) FindByOrder(ctx context.Context, orderNumber string) (*domain.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, shipment := range r.shipments {
		if shipment.OrderNumber == orderNumber {
			return copyShipment(shipment), nil
		}
	}
	return nil, nil
}

func copyShipment(shipment *domain.Shipment) *domain.Shipment {
	copied := *shipment
	copied.Packages = append([]domain.ShipmentPackage(nil), shipment.Packages...)
	copied.TrackingEvents = append([]domain.TrackingEvent(nil), shipment.TrackingEvents...)
	return &copied
}
