package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	packdomain "github.com/wms-platform/fulfillment/internal/packing/domain"
	"github.com/wms-platform/fulfillment/internal/shipping/domain"
	"github.com/wms-platform/fulfillment/pkg/blob"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/resilience"
)

// ShippingService selects carriers, manifests shipments and ingests
// carrier tracking updates
type ShippingService struct {
	carriers  domain.CarrierRepository
	shipments domain.ShipmentRepository
	slips     packdomain.PackingSlipRepository
	orders    ordomain.OrderRepository
	labels    blob.Store
	breaker   *resilience.CircuitBreaker
	publisher events.Publisher
	clock     clock.Clock
	logger    *logging.Logger
}

// NewShippingService wires the shipping stage. Label storage writes go
// through breaker so a degraded blob backend sheds load instead of
// stalling the manifest path.
func NewShippingService(
	carriers domain.CarrierRepository,
	shipments domain.ShipmentRepository,
	slips packdomain.PackingSlipRepository,
	orders ordomain.OrderRepository,
	labels blob.Store,
	breaker *resilience.CircuitBreaker,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *ShippingService {
	return &ShippingService{
		carriers:  carriers,
		shipments: shipments,
		slips:     slips,
		orders:    orders,
		labels:    labels,
		breaker:   breaker,
		publisher: publisher,
		clock:     clk,
		logger:    logger.WithComponent("shipping"),
	}
}

// RegisterCarrier adds or updates a carrier
func (s *ShippingService) RegisterCarrier(ctx context.Context, carrier *domain.Carrier) error {
	if carrier.CarrierID == "" {
		return errors.ErrValidation("carrier id is required")
	}
	if carrier.CreatedAt.IsZero() {
		carrier.CreatedAt = s.clock.Now()
	}
	carrier.UpdatedAt = s.clock.Now()
	return s.carriers.Save(ctx, carrier)
}

// CreateShipment selects the optimal carrier for a packed order and creates
// the shipment from its packing slip. The service level follows order
// priority: urgent ships overnight, high express, normal two-day, low ground.
func (s *ShippingService) CreateShipment(ctx context.Context, orderNumber string, required domain.Capabilities) (*domain.Shipment, error) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", orderNumber)
	}
	if order.Status == ordomain.OrderStatusCancelled {
		return nil, errors.ErrConflict("order " + orderNumber + " is cancelled")
	}
	if order.Status != ordomain.OrderStatusPacked {
		return nil, errors.ErrConflict("order " + orderNumber + " is not packed")
	}

	existing, err := s.shipments.FindByOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("shipment", orderNumber)
	}

	slip, err := s.slips.FindByOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if slip == nil {
		return nil, errors.ErrNotFoundWithID("packing slip", orderNumber)
	}

	level := serviceLevelFor(order.Priority)
	selection, err := s.SelectOptimalCarrier(ctx, ShipmentRequirements{
		Destination:  order.Customer.State,
		ServiceLevel: level,
		WeightKg:     slip.TotalWeightKg(),
		VolumeCubicM: slip.TotalVolumeCubicMeters(),
		Required:     required,
	})
	if err != nil {
		return nil, err
	}
	best := selection.Best

	packages := make([]domain.ShipmentPackage, 0, len(slip.Packages))
	for _, pkg := range slip.Packages {
		packages = append(packages, domain.ShipmentPackage{
			PackageID: pkg.PackageID,
			WeightKg:  pkg.WeightKg,
		})
	}

	shipment, err := domain.NewShipment("SHP-"+uuid.NewString()[:8], orderNumber,
		best.Carrier.CarrierID, level, packages)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	cost, _ := best.Cost.Float64()
	shipment.CostUSD = cost
	estimated := s.clock.Now().AddDate(0, 0, best.TransitDays)
	shipment.EstimatedDeliveryDate = &estimated

	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.ShipmentCreatedEvent{
		ShipmentID:  shipment.ShipmentID,
		OrderNumber: orderNumber,
		CarrierID:   shipment.CarrierID,
		Level:       level,
		CostUSD:     shipment.CostUSD,
		Timestamp:   s.clock.Now(),
	})
	s.logger.Info("shipment created",
		"shipmentId", shipment.ShipmentID,
		"orderNumber", orderNumber,
		"carrierId", shipment.CarrierID,
		"costUsd", shipment.CostUSD)
	return shipment, nil
}

// GenerateShippingLabels assigns one tracking number per package, writes the
// label artifacts to blob storage and moves the shipment to manifested
func (s *ShippingService) GenerateShippingLabels(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	shipment, err := s.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status != domain.ShipmentStatusCreated {
		return nil, errors.ErrConflict("shipment " + shipmentID + " is already manifested")
	}

	trackingNumbers := make([]string, 0, len(shipment.Packages))
	labelPaths := make([]string, 0, len(shipment.Packages))
	for _, pkg := range shipment.Packages {
		tracking := trackingNumber(shipment.CarrierID)
		path := fmt.Sprintf("labels/%s/%s.lbl", shipment.ShipmentID, pkg.PackageID)
		payload := renderLabel(shipment, pkg, tracking)
		if _, err := s.breaker.Execute(ctx, func() (any, error) {
			return nil, s.labels.Write(ctx, path, payload)
		}); err != nil {
			return nil, fmt.Errorf("failed to store label for %s: %w", pkg.PackageID, err)
		}
		trackingNumbers = append(trackingNumbers, tracking)
		labelPaths = append(labelPaths, path)
	}

	if err := shipment.Manifest(trackingNumbers, labelPaths); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.ShipmentManifestedEvent{
		ShipmentID:      shipment.ShipmentID,
		OrderNumber:     shipment.OrderNumber,
		TrackingNumbers: trackingNumbers,
		Timestamp:       s.clock.Now(),
	})
	s.logger.Info("shipment manifested",
		"shipmentId", shipment.ShipmentID,
		"packages", len(shipment.Packages))
	return shipment, nil
}

// UpdateShipmentTracking appends a carrier tracking event. The shipment's
// status follows the mapped carrier status; a delivered event stamps the
// actual delivery date and completes the order.
func (s *ShippingService) UpdateShipmentTracking(ctx context.Context, shipmentID, carrierStatus, location, description string) (*domain.Shipment, error) {
	shipment, err := s.GetShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	mapped := domain.MapCarrierStatus(carrierStatus)
	if err := shipment.RecordTracking(domain.TrackingEvent{
		Timestamp:     now,
		CarrierStatus: carrierStatus,
		Status:        mapped,
		Location:      location,
		Description:   description,
	}); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}

	if err := s.advanceOrder(ctx, shipment, mapped); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.ShipmentTrackedEvent{
		ShipmentID: shipmentID,
		Status:     shipment.Status,
		Location:   location,
		Timestamp:  now,
	})
	return shipment, nil
}

// RecordCarrierDelivery rolls a finished delivery into the carrier's
// performance counters
func (s *ShippingService) RecordCarrierDelivery(ctx context.Context, carrierID string, onTime, damaged, lost bool) error {
	carrier, err := s.carriers.FindByCarrierID(ctx, carrierID)
	if err != nil {
		return err
	}
	if carrier == nil {
		return errors.ErrNotFoundWithID("carrier", carrierID)
	}
	carrier.RecordDelivery(onTime, damaged, lost)
	return s.carriers.Save(ctx, carrier)
}

// GetShipment looks a shipment up by id
func (s *ShippingService) GetShipment(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	shipment, err := s.shipments.FindByShipmentID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, errors.ErrNotFoundWithID("shipment", shipmentID)
	}
	return shipment, nil
}

// GetOrderShipment returns the shipment for an order, or nil
func (s *ShippingService) GetOrderShipment(ctx context.Context, orderNumber string) (*domain.Shipment, error) {
	return s.shipments.FindByOrder(ctx, orderNumber)
}

// advanceOrder mirrors shipment progress onto the order: picked up means
// shipped, delivered means delivered. Later duplicate events are no-ops.
func (s *ShippingService) advanceOrder(ctx context.Context, shipment *domain.Shipment, status domain.ShipmentStatus) error {
	order, err := s.orders.FindByOrderNumber(ctx, shipment.OrderNumber)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.ErrNotFoundWithID("order", shipment.OrderNumber)
	}

	switch status {
	case domain.ShipmentStatusPickedUp:
		if order.Status != ordomain.OrderStatusPacked {
			return nil
		}
		if err := order.MarkShipped(); err != nil {
			return errors.ErrConflict(err.Error())
		}
	case domain.ShipmentStatusDelivered:
		if order.Status == ordomain.OrderStatusPacked {
			// Pickup scan was missed; catch the order up
			if err := order.MarkShipped(); err != nil {
				return errors.ErrConflict(err.Error())
			}
		}
		if order.Status != ordomain.OrderStatusShipped {
			return nil
		}
		if err := order.MarkDelivered(); err != nil {
			return errors.ErrConflict(err.Error())
		}
	default:
		return nil
	}
	return s.orders.Save(ctx, order)
}

func serviceLevelFor(priority ordomain.Priority) domain.ServiceLevel {
	switch priority {
	case ordomain.PriorityUrgent:
		return domain.ServiceOvernight
	case ordomain.PriorityHigh:
		return domain.ServiceExpress
	case ordomain.PriorityNormal:
		return domain.ServiceTwoDay
	}
	return domain.ServiceGround
}

func trackingNumber(carrierID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	return strings.ToUpper(carrierID) + suffix
}

func renderLabel(shipment *domain.Shipment, pkg domain.ShipmentPackage, tracking string) []byte {
	return []byte(fmt.Sprintf("SHIPMENT %s\nORDER %s\nCARRIER %s\nPACKAGE %s\nWEIGHT %.2fkg\nTRACKING %s\n",
		shipment.ShipmentID, shipment.OrderNumber, shipment.CarrierID,
		pkg.PackageID, pkg.WeightKg, tracking))
}
