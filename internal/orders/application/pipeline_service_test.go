package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invmemory "github.com/wms-platform/fulfillment/internal/inventory/infrastructure/memory"
	"github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/internal/orders/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

type pipelineFixture struct {
	pipeline *PipelineService
	ledger   *invapp.LedgerService
	orders   *memory.OrderRepository
	queues   *queue.Memory
	recorder *events.Recorder
	clock    *clock.Fake
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()
	queues := queue.NewMemory(64)

	ledger := invapp.NewLedgerService(
		invmemory.NewRecordRepository(),
		invmemory.NewTransactionRepository(),
		invmemory.NewAllocationRepository(),
		invmemory.NewLotRepository(),
		recorder, clk, logger,
	)
	orders := memory.NewOrderRepository()

	return &pipelineFixture{
		pipeline: NewPipelineService(orders, ledger, queues, recorder, clk, logger),
		ledger:   ledger,
		orders:   orders,
		queues:   queues,
		recorder: recorder,
		clock:    clk,
	}
}

func (f *pipelineFixture) stock(t *testing.T, sku, location string, quantity int) {
	t.Helper()
	_, err := f.ledger.AdjustInventory(context.Background(), sku, location, quantity, "seed")
	require.NoError(t, err)
}

func (f *pipelineFixture) create(t *testing.T, orderNumber string, lines ...CreateOrderLine) *domain.Order {
	t.Helper()
	order, err := f.pipeline.CreateOrder(context.Background(), CreateOrderCommand{
		OrderNumber: orderNumber,
		Customer:    domain.Customer{CustomerID: "C1", State: "CA", PostalCode: "94016"},
		Priority:    domain.PriorityNormal,
		Lines:       lines,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderEnqueuesValidation(t *testing.T) {
	f := newPipelineFixture(t)

	order := f.create(t, "SO-1", CreateOrderLine{SKU: "A1", UnitPrice: 5, Quantity: 3})

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.InDelta(t, 15.0, order.TotalValue, 0.001)
	assert.Equal(t, 1, f.queues.Depth(queue.Validation))
	assert.Len(t, f.recorder.OfType("fulfillment.order.created"), 1)
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	f := newPipelineFixture(t)
	f.create(t, "SO-1", CreateOrderLine{SKU: "A1", Quantity: 1})

	_, err := f.pipeline.CreateOrder(context.Background(), CreateOrderCommand{
		OrderNumber: "SO-1",
		Lines:       []CreateOrderLine{{SKU: "A1", Quantity: 1}},
	})
	assert.True(t, errors.IsCode(err, errors.CodeAlreadyExists))
}

func TestValidateOrderSufficientStock(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.stock(t, "A1", "PICK-01", 10)
	f.create(t, "SO-1", CreateOrderLine{SKU: "A1", Quantity: 4})

	order, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusValidated, order.Status)
	assert.Equal(t, 1, f.queues.Depth(queue.Allocation))
}

func TestValidateOrderInsufficientStockFailsWithIssues(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.stock(t, "A1", "PICK-01", 2)
	f.create(t, "SO-1",
		CreateOrderLine{SKU: "A1", Quantity: 4},
		CreateOrderLine{SKU: "B9", Quantity: 1},
	)

	order, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusValidationFailed, order.Status)
	require.Len(t, order.ValidationIssues, 2)
	assert.Equal(t, domain.IssueInsufficientStock, order.ValidationIssues[0].Code)
	assert.Equal(t, "A1", order.ValidationIssues[0].SKU)
	assert.Equal(t, "B9", order.ValidationIssues[1].SKU)
	assert.Zero(t, f.queues.Depth(queue.Allocation))
	assert.Len(t, f.recorder.OfType("fulfillment.order.validation_failed"), 1)
}

func TestValidateOrderPastRequiredByFails(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.stock(t, "A1", "PICK-01", 10)

	past := f.clock.Now().Add(-24 * time.Hour)
	_, err := f.pipeline.CreateOrder(ctx, CreateOrderCommand{
		OrderNumber: "SO-1",
		Customer:    domain.Customer{CustomerID: "C1"},
		Lines:       []CreateOrderLine{{SKU: "A1", Quantity: 1}},
		RequiredBy:  &past,
	})
	require.NoError(t, err)

	order, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)
	require.Len(t, order.ValidationIssues, 1)
	assert.Equal(t, domain.IssueRequiredDatePast, order.ValidationIssues[0].Code)
}

func TestAllocateOrderFull(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.stock(t, "A1", "PICK-01", 10)
	f.create(t, "SO-1", CreateOrderLine{SKU: "A1", Quantity: 4})
	_, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)

	order, err := f.pipeline.AllocateOrder(ctx, "SO-1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusAllocated, order.Status)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 4, order.Lines[0].AllocatedQuantity)
	assert.NotEmpty(t, order.Lines[0].AllocationIDs)

	summary, err := f.ledger.GetInventory(ctx, "A1", "")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Allocated)
	assert.Equal(t, 6, summary.Available)
}

func TestAllocateOrderPartialKeepsReservations(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.stock(t, "A1", "PICK-01", 3)
	f.create(t, "SO-1", CreateOrderLine{SKU: "A1", Quantity: 5})

	// Force past validation: stock shrinks between validation and allocation
	// in real flows; here the order is validated against a bigger pool first.
	f.stock(t, "A1", "PICK-02", 2)
	_, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)
	_, err = f.ledger.AdjustInventory(ctx, "A1", "PICK-02", -2, "cycle count")
	require.NoError(t, err)

	order, err := f.pipeline.AllocateOrder(ctx, "SO-1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPartiallyAllocated, order.Status)
	assert.Equal(t, 3, order.Lines[0].AllocatedQuantity)

	// The partial reservation stands, no rollback
	summary, err := f.ledger.GetInventory(ctx, "A1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Allocated)
}

func TestCancelOrderReleasesAllocations(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.stock(t, "A1", "PICK-01", 10)
	f.create(t, "SO-1", CreateOrderLine{SKU: "A1", Quantity: 4})
	_, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)
	_, err = f.pipeline.AllocateOrder(ctx, "SO-1")
	require.NoError(t, err)

	order, err := f.pipeline.CancelOrder(ctx, "SO-1", "customer request")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)

	summary, err := f.ledger.GetInventory(ctx, "A1", "")
	require.NoError(t, err)
	assert.Zero(t, summary.Allocated)
	assert.Equal(t, 10, summary.Available)
	assert.Len(t, f.recorder.OfType("fulfillment.order.cancelled"), 1)
}

func TestValidateSkipsCancelledOrder(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	f.create(t, "SO-1", CreateOrderLine{SKU: "A1", Quantity: 1})
	_, err := f.pipeline.CancelOrder(ctx, "SO-1", "test")
	require.NoError(t, err)

	order, err := f.pipeline.ValidateOrder(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}
