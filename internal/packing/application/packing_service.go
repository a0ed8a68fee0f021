package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/internal/packing/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// PackageInput describes one parcel of a pack command
type PackageInput struct {
	WeightKg   float64             `validate:"required,gt=0"`
	Dimensions domain.Dimensions   `validate:"required"`
	Contents   []domain.PackedItem `validate:"required,min=1,dive"`
}

// PackOrderCommand records the manifest of a picked order
type PackOrderCommand struct {
	OrderNumber string         `validate:"required"`
	Packages    []PackageInput `validate:"required,min=1,dive"`
}

// PackingService records package manifests and hands packed orders to shipping
type PackingService struct {
	slips     domain.PackingSlipRepository
	orders    ordomain.OrderRepository
	queues    queue.Publisher
	publisher events.Publisher
	clock     clock.Clock
	logger    *logging.Logger
}

// NewPackingService wires the packing stage
func NewPackingService(
	slips domain.PackingSlipRepository,
	orders ordomain.OrderRepository,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *PackingService {
	return &PackingService{
		slips:     slips,
		orders:    orders,
		queues:    queues,
		publisher: publisher,
		clock:     clk,
		logger:    logger.WithComponent("packing"),
	}
}

// CompletePackingOrder records the package manifest for a picked order, rolls
// packed quantities into the order lines, marks the order packed and enqueues
// it for shipping. Every picked unit must be accounted for in a package.
func (s *PackingService) CompletePackingOrder(ctx context.Context, cmd PackOrderCommand) (*domain.PackingSlip, error) {
	order, err := s.orders.FindByOrderNumber(ctx, cmd.OrderNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", cmd.OrderNumber)
	}
	if order.Status == ordomain.OrderStatusCancelled {
		s.logger.Info("skipping packing of cancelled order", "orderNumber", cmd.OrderNumber)
		return nil, errors.ErrConflict("order " + cmd.OrderNumber + " is cancelled")
	}
	if order.Status != ordomain.OrderStatusPicked {
		return nil, errors.ErrConflict("order " + cmd.OrderNumber + " is not fully picked")
	}

	existing, err := s.slips.FindByOrder(ctx, cmd.OrderNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("packing slip", cmd.OrderNumber)
	}

	packages := make([]domain.Package, 0, len(cmd.Packages))
	for _, input := range cmd.Packages {
		packages = append(packages, domain.Package{
			PackageID:  "PKG-" + uuid.NewString()[:8],
			WeightKg:   input.WeightKg,
			Dimensions: input.Dimensions,
			Contents:   input.Contents,
		})
	}

	slip, err := domain.NewPackingSlip("PS-"+uuid.NewString()[:8], cmd.OrderNumber, order.WaveID, packages)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	if err := s.verifyManifest(order, slip); err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		packed := slip.PackedQuantity(line.SKU)
		if packed == 0 {
			continue
		}
		if err := order.RecordPack(line.SKU, packed); err != nil {
			return nil, errors.ErrConflict(err.Error())
		}
	}
	if err := order.MarkPacked(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	if err := s.slips.Save(ctx, slip); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.OrderPackedEvent{
		OrderNumber: cmd.OrderNumber,
		SlipNumber:  slip.SlipNumber,
		Packages:    len(slip.Packages),
		WeightKg:    slip.TotalWeightKg(),
		Timestamp:   s.clock.Now(),
	})

	if err := s.queues.Publish(ctx, queue.Shipping, queue.OrderWork{OrderNumber: cmd.OrderNumber}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue order for shipping",
			"orderNumber", cmd.OrderNumber)
	}

	s.logger.Info("order packed",
		"orderNumber", cmd.OrderNumber,
		"slipNumber", slip.SlipNumber,
		"packages", len(slip.Packages))
	return slip, nil
}

// GetPackingSlip looks a slip up by number
func (s *PackingService) GetPackingSlip(ctx context.Context, slipNumber string) (*domain.PackingSlip, error) {
	slip, err := s.slips.FindBySlipNumber(ctx, slipNumber)
	if err != nil {
		return nil, err
	}
	if slip == nil {
		return nil, errors.ErrNotFoundWithID("packing slip", slipNumber)
	}
	return slip, nil
}

// GetOrderPackingSlip returns the slip recorded for an order, or nil
func (s *PackingService) GetOrderPackingSlip(ctx context.Context, orderNumber string) (*domain.PackingSlip, error) {
	return s.slips.FindByOrder(ctx, orderNumber)
}

// verifyManifest checks the manifest against picked quantities: no SKU may be
// packed beyond what was picked, nothing picked may be left out, and no
// unknown SKU may appear.
func (s *PackingService) verifyManifest(order *ordomain.Order, slip *domain.PackingSlip) error {
	seen := make(map[string]bool)
	for _, pkg := range slip.Packages {
		for _, item := range pkg.Contents {
			if order.Line(item.SKU) == nil {
				return errors.ErrValidation(fmt.Sprintf("sku %s is not on order %s", item.SKU, order.OrderNumber))
			}
			seen[item.SKU] = true
		}
	}
	for _, line := range order.Lines {
		packed := slip.PackedQuantity(line.SKU)
		if packed > line.PickedQuantity {
			return errors.ErrValidation(fmt.Sprintf(
				"sku %s packed %d exceeds picked %d", line.SKU, packed, line.PickedQuantity))
		}
		if packed < line.PickedQuantity {
			return errors.ErrValidation(fmt.Sprintf(
				"sku %s packed %d short of picked %d", line.SKU, packed, line.PickedQuantity))
		}
		if line.PickedQuantity > 0 && !seen[line.SKU] {
			return errors.ErrValidation(fmt.Sprintf("sku %s missing from manifest", line.SKU))
		}
	}
	return nil
}
