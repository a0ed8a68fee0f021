package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	ormemory "github.com/wms-platform/fulfillment/internal/orders/infrastructure/memory"
	"github.com/wms-platform/fulfillment/internal/packing/domain"
	"github.com/wms-platform/fulfillment/internal/packing/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

type packingFixture struct {
	packing *PackingService
	orders  *ormemory.OrderRepository
	queues  *queue.Memory
}

func newPackingFixture(t *testing.T) *packingFixture {
	t.Helper()
	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC))
	queues := queue.NewMemory(64)
	orders := ormemory.NewOrderRepository()

	return &packingFixture{
		packing: NewPackingService(memory.NewPackingSlipRepository(), orders, queues,
			events.NewRecorder(), clk, logger),
		orders: orders,
		queues: queues,
	}
}

// pickedOrder stores an order that has been fully picked
func (f *packingFixture) pickedOrder(t *testing.T, orderNumber string, lines ...ordomain.Line) {
	t.Helper()
	order, err := ordomain.NewOrder(orderNumber, ordomain.Customer{CustomerID: "C1"},
		ordomain.PriorityNormal, lines, nil)
	require.NoError(t, err)
	require.NoError(t, order.MarkValidated())
	for _, line := range lines {
		require.NoError(t, order.ApplyAllocation(line.SKU, line.OrderedQuantity, nil))
	}
	require.NoError(t, order.FinishAllocation())
	require.NoError(t, order.Release("W1"))
	require.NoError(t, order.StartPicking())
	for _, line := range lines {
		require.NoError(t, order.RecordPick(line.SKU, line.OrderedQuantity))
	}
	require.Equal(t, ordomain.OrderStatusPicked, order.Status)
	require.NoError(t, f.orders.Save(context.Background(), order))
}

func box(weight float64, contents ...domain.PackedItem) PackageInput {
	return PackageInput{
		WeightKg:   weight,
		Dimensions: domain.Dimensions{LengthCm: 40, WidthCm: 30, HeightCm: 20},
		Contents:   contents,
	}
}

func TestCompletePackingOrder(t *testing.T) {
	f := newPackingFixture(t)
	ctx := context.Background()

	f.pickedOrder(t, "SO-1",
		ordomain.Line{SKU: "A1", OrderedQuantity: 8},
		ordomain.Line{SKU: "B2", OrderedQuantity: 4})

	slip, err := f.packing.CompletePackingOrder(ctx, PackOrderCommand{
		OrderNumber: "SO-1",
		Packages: []PackageInput{
			box(3.2, domain.PackedItem{SKU: "A1", Quantity: 8}),
			box(1.1, domain.PackedItem{SKU: "B2", Quantity: 4}),
		},
	})
	require.NoError(t, err)

	assert.Len(t, slip.Packages, 2)
	assert.Equal(t, "W1", slip.WaveID)
	assert.InDelta(t, 4.3, slip.TotalWeightKg(), 0.001)

	order, err := f.orders.FindByOrderNumber(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusPacked, order.Status)
	assert.Equal(t, 8, order.Line("A1").PackedQuantity)
	assert.Equal(t, 4, order.Line("B2").PackedQuantity)
	assert.Equal(t, 1, f.queues.Depth(queue.Shipping))
}

func TestCompletePackingRejectsUnpickedOrder(t *testing.T) {
	f := newPackingFixture(t)
	ctx := context.Background()

	order, err := ordomain.NewOrder("SO-1", ordomain.Customer{CustomerID: "C1"},
		ordomain.PriorityNormal, []ordomain.Line{{SKU: "A1", OrderedQuantity: 8}}, nil)
	require.NoError(t, err)
	require.NoError(t, f.orders.Save(ctx, order))

	_, err = f.packing.CompletePackingOrder(ctx, PackOrderCommand{
		OrderNumber: "SO-1",
		Packages:    []PackageInput{box(1, domain.PackedItem{SKU: "A1", Quantity: 8})},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
}

func TestCompletePackingRejectsShortManifest(t *testing.T) {
	f := newPackingFixture(t)
	ctx := context.Background()
	f.pickedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})

	_, err := f.packing.CompletePackingOrder(ctx, PackOrderCommand{
		OrderNumber: "SO-1",
		Packages:    []PackageInput{box(1, domain.PackedItem{SKU: "A1", Quantity: 6})},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
	assert.Zero(t, f.queues.Depth(queue.Shipping))
}

func TestCompletePackingRejectsUnknownSKU(t *testing.T) {
	f := newPackingFixture(t)
	ctx := context.Background()
	f.pickedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})

	_, err := f.packing.CompletePackingOrder(ctx, PackOrderCommand{
		OrderNumber: "SO-1",
		Packages: []PackageInput{
			box(1, domain.PackedItem{SKU: "A1", Quantity: 8}),
			box(1, domain.PackedItem{SKU: "ZZ", Quantity: 1}),
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestCompletePackingIsNotRepeatable(t *testing.T) {
	f := newPackingFixture(t)
	ctx := context.Background()
	f.pickedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})

	cmd := PackOrderCommand{
		OrderNumber: "SO-1",
		Packages:    []PackageInput{box(1, domain.PackedItem{SKU: "A1", Quantity: 8})},
	}
	_, err := f.packing.CompletePackingOrder(ctx, cmd)
	require.NoError(t, err)

	_, err = f.packing.CompletePackingOrder(ctx, cmd)
	require.Error(t, err)
	assert.Equal(t, 1, f.queues.Depth(queue.Shipping))
}
