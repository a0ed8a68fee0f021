package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invdomain "github.com/wms-platform/fulfillment/internal/inventory/domain"
	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/internal/returns/domain"
	"github.com/wms-platform/fulfillment/pkg/blob"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

const (
	// ReturnWindow is how long after authorization a return may arrive
	ReturnWindow = 30 * 24 * time.Hour

	// InspectionLocation receives restocked returns
	InspectionLocation = "RETURNS-INSPECTION"
)

// InventoryLedger is the slice of the ledger returns need
type InventoryLedger interface {
	AdjustInventory(ctx context.Context, sku, locationCode string, delta int, reason string) (*invdomain.InventoryRecord, error)
}

// AuthorizeReturnItem is one requested return line
type AuthorizeReturnItem struct {
	SKU         string           `validate:"required"`
	Quantity    int              `validate:"required,gt=0"`
	Condition   domain.Condition `validate:"required"`
	Restockable bool
}

// AuthorizeReturnCommand creates an RMA for a shipped order
type AuthorizeReturnCommand struct {
	OrderNumber string                `validate:"required"`
	Method      domain.ReturnMethod   `validate:"required,oneof=mail carrier_pickup drop_off"`
	Items       []AuthorizeReturnItem `validate:"required,min=1,dive"`
}

// ReceivedItem is one physically returned line presented for inspection
type ReceivedItem struct {
	SKU       string           `validate:"required"`
	Quantity  int              `validate:"required,gt=0"`
	Condition domain.Condition `validate:"required"`
}

// ReturnsService authorizes and processes customer returns
type ReturnsService struct {
	rmas      domain.RMARepository
	orders    ordomain.OrderRepository
	ledger    InventoryLedger
	labels    blob.Store
	queues    queue.Publisher
	publisher events.Publisher
	clock     clock.Clock
	logger    *logging.Logger
}

// NewReturnsService wires the returns processor
func NewReturnsService(
	rmas domain.RMARepository,
	orders ordomain.OrderRepository,
	ledger InventoryLedger,
	labels blob.Store,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *ReturnsService {
	return &ReturnsService{
		rmas:      rmas,
		orders:    orders,
		ledger:    ledger,
		labels:    labels,
		queues:    queues,
		publisher: publisher,
		clock:     clk,
		logger:    logger.WithComponent("returns"),
	}
}

// CreateReturnAuthorization authorizes a return against a shipped or
// delivered order. Expected refunds are computed from the authorized
// condition; shipping methods get a return label immediately.
func (s *ReturnsService) CreateReturnAuthorization(ctx context.Context, cmd AuthorizeReturnCommand) (*domain.RMA, error) {
	order, err := s.orders.FindByOrderNumber(ctx, cmd.OrderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", cmd.OrderNumber)
	}
	if order.Status != ordomain.OrderStatusShipped && order.Status != ordomain.OrderStatusDelivered {
		return nil, errors.ErrConflict("order " + cmd.OrderNumber + " has not shipped")
	}

	lines := make([]domain.RMALine, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		orderLine := order.Line(item.SKU)
		if orderLine == nil {
			return nil, errors.ErrValidation(fmt.Sprintf("sku %s is not on order %s", item.SKU, cmd.OrderNumber))
		}
		if item.Quantity > orderLine.OrderedQuantity {
			return nil, errors.ErrValidation(fmt.Sprintf(
				"sku %s return quantity %d exceeds ordered %d", item.SKU, item.Quantity, orderLine.OrderedQuantity))
		}

		expected := refundFor(orderLine.UnitPrice, item.Quantity, item.Condition)
		lines = append(lines, domain.RMALine{
			SKU:                 item.SKU,
			Quantity:            item.Quantity,
			UnitPrice:           orderLine.UnitPrice,
			AuthorizedCondition: item.Condition,
			Restockable:         item.Restockable,
			ExpectedRefund:      expected,
		})
	}

	now := s.clock.Now()
	rma, err := domain.NewRMA("RMA-"+uuid.NewString()[:8], cmd.OrderNumber,
		order.Customer.CustomerID, cmd.Method, lines, now.Add(ReturnWindow))
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if cmd.Method.Ships() {
		path := fmt.Sprintf("labels/returns/%s.lbl", rma.RMANumber)
		if err := s.labels.Write(ctx, path, renderReturnLabel(rma)); err != nil {
			return nil, fmt.Errorf("failed to store return label: %w", err)
		}
		if err := rma.MarkLabelSent(path); err != nil {
			return nil, errors.ErrConflict(err.Error())
		}
	}

	if err := s.rmas.Save(ctx, rma); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.ReturnAuthorizedEvent{
		RMANumber:   rma.RMANumber,
		OrderNumber: cmd.OrderNumber,
		Lines:       len(lines),
		ExpiresAt:   rma.ExpiresAt,
		Timestamp:   now,
	})
	s.logger.Info("return authorized",
		"rmaNumber", rma.RMANumber,
		"orderNumber", cmd.OrderNumber,
		"lines", len(lines))
	return rma, nil
}

// ProcessReceivedReturn inspects the returned items, computes condition-based
// refunds, restocks what is allowed at the inspection location and queues the
// total refund for payment reversal. Items not on the RMA are recorded at
// zero refund and flagged for review, without failing the return.
func (s *ReturnsService) ProcessReceivedReturn(ctx context.Context, rmaNumber string, items []ReceivedItem) (*domain.RMA, error) {
	rma, err := s.GetRMA(ctx, rmaNumber)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := rma.MarkReceived(now); err != nil {
		if err == domain.ErrWindowExpired {
			if saveErr := s.rmas.Save(ctx, rma); saveErr != nil {
				return nil, saveErr
			}
			return nil, errors.ErrConflict("return window for " + rmaNumber + " expired")
		}
		return nil, errors.ErrConflict(err.Error())
	}

	total := decimal.Zero
	restockedUnits := 0
	received := make([]domain.ReceivedLine, 0, len(items))
	for _, item := range items {
		line := rma.Line(item.SKU)
		if line == nil {
			received = append(received, domain.ReceivedLine{
				SKU:       item.SKU,
				Quantity:  item.Quantity,
				Condition: item.Condition,
			})
			s.flagUnknownItem(ctx, rmaNumber, item)
			continue
		}

		refund := decimal.NewFromFloat(line.UnitPrice).
			Mul(decimal.NewFromInt(int64(item.Quantity))).
			Mul(domain.RefundMultiplier(item.Condition)).
			Round(2)
		total = total.Add(refund)

		restocked := false
		if domain.RestockAllowed(item.Condition, line.Restockable) {
			if _, err := s.ledger.AdjustInventory(ctx, item.SKU, InspectionLocation, item.Quantity, "customer return "+rmaNumber); err != nil {
				return nil, fmt.Errorf("failed to restock %s: %w", item.SKU, err)
			}
			restocked = true
			restockedUnits += item.Quantity
		}

		refundValue, _ := refund.Float64()
		received = append(received, domain.ReceivedLine{
			SKU:        item.SKU,
			Quantity:   item.Quantity,
			Condition:  item.Condition,
			Refund:     refundValue,
			Restocked:  restocked,
			Recognized: true,
		})
	}

	totalValue, _ := total.Float64()
	if err := rma.Complete(received, totalValue, now); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.rmas.Save(ctx, rma); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.RefundQueuedEvent{
		RMANumber:   rmaNumber,
		OrderNumber: rma.OrderNumber,
		CustomerID:  rma.CustomerID,
		TotalRefund: totalValue,
		Timestamp:   now,
	})
	s.publisher.Publish(ctx, domain.ReturnCompletedEvent{
		RMANumber:   rmaNumber,
		OrderNumber: rma.OrderNumber,
		Restocked:   restockedUnits,
		TotalRefund: totalValue,
		Timestamp:   now,
	})
	s.logger.Info("return processed",
		"rmaNumber", rmaNumber,
		"totalRefund", totalValue,
		"restockedUnits", restockedUnits)
	return rma, nil
}

// GetRMA looks an authorization up by number
func (s *ReturnsService) GetRMA(ctx context.Context, rmaNumber string) (*domain.RMA, error) {
	rma, err := s.rmas.FindByRMANumber(ctx, rmaNumber)
	if err != nil {
		return nil, err
	}
	if rma == nil {
		return nil, errors.ErrNotFoundWithID("rma", rmaNumber)
	}
	return rma, nil
}

// GetOrderReturns lists an order's authorizations
func (s *ReturnsService) GetOrderReturns(ctx context.Context, orderNumber string) ([]*domain.RMA, error) {
	return s.rmas.FindByOrder(ctx, orderNumber)
}

func (s *ReturnsService) flagUnknownItem(ctx context.Context, rmaNumber string, item ReceivedItem) {
	if err := s.queues.Publish(ctx, queue.Exceptions, queue.ExceptionWork{
		Kind:      queue.ExceptionUnknownReturn,
		Reference: rmaNumber,
		Detail:    fmt.Sprintf("%d x %s not on authorization", item.Quantity, item.SKU),
	}); err != nil {
		s.logger.WithError(err).Warn("failed to flag unknown return item",
			"rmaNumber", rmaNumber, "sku", item.SKU)
	}
	s.logger.Warn("unknown item in return",
		"rmaNumber", rmaNumber,
		"sku", item.SKU,
		"quantity", item.Quantity)
}

func refundFor(unitPrice float64, quantity int, condition domain.Condition) float64 {
	refund := decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(domain.RefundMultiplier(condition)).
		Round(2)
	value, _ := refund.Float64()
	return value
}

func renderReturnLabel(rma *domain.RMA) []byte {
	return []byte(fmt.Sprintf("RETURN %s\nORDER %s\nCUSTOMER %s\nEXPIRES %s\n",
		rma.RMANumber, rma.OrderNumber, rma.CustomerID, rma.ExpiresAt.Format(time.RFC3339)))
}
