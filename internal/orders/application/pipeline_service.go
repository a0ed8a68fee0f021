package application

import (
	"context"
	"fmt"
	"time"

	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invdomain "github.com/wms-platform/fulfillment/internal/inventory/domain"
	"github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// InventoryLedger is the slice of the ledger the pipeline needs
type InventoryLedger interface {
	GetInventory(ctx context.Context, sku, locationCode string) (*invapp.InventorySummary, error)
	AllocateInventory(ctx context.Context, sku string, quantity int, orderID string) ([]*invdomain.Allocation, error)
	ReleaseAllocation(ctx context.Context, allocationID string) error
}

// CreateOrderCommand creates a new outbound order
type CreateOrderCommand struct {
	OrderNumber string            `validate:"required"`
	Customer    domain.Customer   `validate:"required"`
	Priority    domain.Priority   `validate:"omitempty,oneof=low normal high urgent"`
	Carrier     string
	Lines       []CreateOrderLine `validate:"required,min=1,dive"`
	RequiredBy  *time.Time
}

// CreateOrderLine is one requested line
type CreateOrderLine struct {
	SKU         string `validate:"required"`
	Description string
	UnitPrice   float64 `validate:"gte=0"`
	Quantity    int     `validate:"required,gt=0"`
}

// PipelineService drives orders through validation and allocation. Picking,
// packing and shipping stages update orders through the same repository.
type PipelineService struct {
	orders    domain.OrderRepository
	ledger    InventoryLedger
	queues    queue.Publisher
	publisher events.Publisher
	clock     clock.Clock
	logger    *logging.Logger
}

// NewPipelineService wires the pipeline
func NewPipelineService(
	orders domain.OrderRepository,
	ledger InventoryLedger,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *PipelineService {
	return &PipelineService{
		orders:    orders,
		ledger:    ledger,
		queues:    queues,
		publisher: publisher,
		clock:     clk,
		logger:    logger.WithComponent("orders.pipeline"),
	}
}

// CreateOrder persists a pending order and enqueues it for validation
func (s *PipelineService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	existing, err := s.orders.FindByOrderNumber(ctx, cmd.OrderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("order", cmd.OrderNumber)
	}

	lines := make([]domain.Line, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		lines = append(lines, domain.Line{
			SKU:             l.SKU,
			Description:     l.Description,
			UnitPrice:       l.UnitPrice,
			OrderedQuantity: l.Quantity,
		})
	}

	order, err := domain.NewOrder(cmd.OrderNumber, cmd.Customer, cmd.Priority, lines, cmd.RequiredBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	order.Carrier = cmd.Carrier
	order.OrderDate = s.clock.Now()

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.OrderCreatedEvent{
		OrderNumber: order.OrderNumber,
		CustomerID:  order.Customer.CustomerID,
		Priority:    order.Priority,
		TotalValue:  order.TotalValue,
		Lines:       len(order.Lines),
		Timestamp:   s.clock.Now(),
	})

	if err := s.queues.Publish(ctx, queue.Validation, queue.OrderWork{OrderNumber: order.OrderNumber}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue order for validation",
			"orderNumber", order.OrderNumber)
	}

	s.logger.Info("order created",
		"orderNumber", order.OrderNumber,
		"lines", len(order.Lines),
		"totalValue", order.TotalValue)
	return order, nil
}

// GetOrder looks up an order by number
func (s *PipelineService) GetOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", orderNumber)
	}
	return order, nil
}

// FindOrders lists orders matching the filter
func (s *PipelineService) FindOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	return s.orders.Find(ctx, filter)
}

// ValidateOrder checks line availability and the required-by date. Failures
// produce structured issues and terminate the order; success hands it to the
// allocation queue.
func (s *PipelineService) ValidateOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		s.logger.Info("skipping validation of cancelled order", "orderNumber", orderNumber)
		return order, nil
	}

	var issues []domain.ValidationIssue
	for _, line := range order.Lines {
		summary, err := s.ledger.GetInventory(ctx, line.SKU, "")
		if err != nil {
			return nil, err
		}
		if summary.Available < line.OrderedQuantity {
			issues = append(issues, domain.ValidationIssue{
				SKU:     line.SKU,
				Code:    domain.IssueInsufficientStock,
				Message: availabilityMessage(line.SKU, line.OrderedQuantity, summary.Available),
			})
		}
	}
	if order.RequiredBy != nil && order.RequiredBy.Before(s.clock.Now()) {
		issues = append(issues, domain.ValidationIssue{
			Code:    domain.IssueRequiredDatePast,
			Message: "required-by date is already past",
		})
	}

	if len(issues) > 0 {
		if err := order.MarkValidationFailed(issues); err != nil {
			return nil, errors.ErrConflict(err.Error())
		}
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
		s.publisher.Publish(ctx, domain.OrderValidationFailedEvent{
			OrderNumber: orderNumber,
			Issues:      issues,
			Timestamp:   s.clock.Now(),
		})
		s.logger.Warn("order validation failed",
			"orderNumber", orderNumber,
			"issues", len(issues))
		return order, nil
	}

	if err := order.MarkValidated(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, domain.OrderValidatedEvent{OrderNumber: orderNumber, Timestamp: s.clock.Now()})

	if err := s.queues.Publish(ctx, queue.Allocation, queue.OrderWork{OrderNumber: orderNumber}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue order for allocation",
			"orderNumber", orderNumber)
	}
	return order, nil
}

// AllocateOrder reserves inventory for every line. Partial coverage leaves
// the order partially_allocated with whatever was reserved kept in place.
func (s *PipelineService) AllocateOrder(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusCancelled {
		s.logger.Info("skipping allocation of cancelled order", "orderNumber", orderNumber)
		return order, nil
	}
	if order.Status != domain.OrderStatusValidated {
		return nil, errors.ErrConflict("order " + orderNumber + " is not ready for allocation")
	}

	for _, line := range order.Lines {
		allocations, allocErr := s.ledger.AllocateInventory(ctx, line.SKU, line.OrderedQuantity, order.OrderNumber)
		made := 0
		ids := make([]string, 0, len(allocations))
		for _, a := range allocations {
			made += a.Quantity
			ids = append(ids, a.AllocationID)
		}
		if made > 0 {
			if err := order.ApplyAllocation(line.SKU, made, ids); err != nil {
				return nil, err
			}
		}
		if allocErr != nil && !errors.IsCode(allocErr, errors.CodeInsufficientInventory) {
			return nil, allocErr
		}
	}

	if err := order.FinishAllocation(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.OrderAllocatedEvent{
		OrderNumber: orderNumber,
		Status:      order.Status,
		Timestamp:   s.clock.Now(),
	})
	s.logger.Info("order allocation finished",
		"orderNumber", orderNumber,
		"status", string(order.Status))
	return order, nil
}

// CancelOrder cancels an order and releases any live allocations
func (s *PipelineService) CancelOrder(ctx context.Context, orderNumber, reason string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	for _, line := range order.Lines {
		for _, allocationID := range line.AllocationIDs {
			if err := s.ledger.ReleaseAllocation(ctx, allocationID); err != nil {
				s.logger.WithError(err).Warn("failed to release allocation on cancel",
					"orderNumber", orderNumber,
					"allocationId", allocationID)
			}
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, domain.OrderCancelledEvent{
		OrderNumber: orderNumber,
		Reason:      reason,
		Timestamp:   s.clock.Now(),
	})
	s.logger.Info("order cancelled", "orderNumber", orderNumber, "reason", reason)
	return order, nil
}

func availabilityMessage(sku string, requested, available int) string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", sku, requested, available)
}
