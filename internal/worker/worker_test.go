package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invmemory "github.com/wms-platform/fulfillment/internal/inventory/infrastructure/memory"
	laborapp "github.com/wms-platform/fulfillment/internal/labor/application"
	labormemory "github.com/wms-platform/fulfillment/internal/labor/infrastructure/memory"
	orapp "github.com/wms-platform/fulfillment/internal/orders/application"
	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	ormemory "github.com/wms-platform/fulfillment/internal/orders/infrastructure/memory"
	packapp "github.com/wms-platform/fulfillment/internal/packing/application"
	packdomain "github.com/wms-platform/fulfillment/internal/packing/domain"
	packmemory "github.com/wms-platform/fulfillment/internal/packing/infrastructure/memory"
	pickapp "github.com/wms-platform/fulfillment/internal/picking/application"
	pickmemory "github.com/wms-platform/fulfillment/internal/picking/infrastructure/memory"
	shipapp "github.com/wms-platform/fulfillment/internal/shipping/application"
	shipdomain "github.com/wms-platform/fulfillment/internal/shipping/domain"
	shipmemory "github.com/wms-platform/fulfillment/internal/shipping/infrastructure/memory"
	waveapp "github.com/wms-platform/fulfillment/internal/waving/application"
	wavedomain "github.com/wms-platform/fulfillment/internal/waving/domain"
	wavememory "github.com/wms-platform/fulfillment/internal/waving/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/blob"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/metrics"
	"github.com/wms-platform/fulfillment/pkg/queue"
	"github.com/wms-platform/fulfillment/pkg/resilience"
)

type workerFixture struct {
	worker     *Worker
	queues     *queue.Memory
	orders     *orapp.PipelineService
	ledger     *invapp.LedgerService
	planner    *waveapp.PlannerService
	picking    *pickapp.ExecutorService
	packing    *packapp.PackingService
	shipping   *shipapp.ShippingService
	dispatcher *laborapp.DispatcherService
	metrics    *metrics.Metrics
	clock      *clock.Fake
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 16, 6, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()
	queues := queue.NewMemory(64)

	orderRepo := ormemory.NewOrderRepository()
	waveRepo := wavememory.NewWaveRepository()
	slipRepo := packmemory.NewPackingSlipRepository()

	ledger := invapp.NewLedgerService(
		invmemory.NewRecordRepository(),
		invmemory.NewTransactionRepository(),
		invmemory.NewAllocationRepository(),
		invmemory.NewLotRepository(),
		recorder, clk, logger,
	)
	orders := orapp.NewPipelineService(orderRepo, ledger, queues, recorder, clk, logger)
	planner := waveapp.NewPlannerService(waveRepo, orderRepo, queues, recorder, clk, logger)
	picking := pickapp.NewExecutorService(
		pickmemory.NewPickTaskRepository(),
		pickmemory.NewPickExceptionRepository(),
		orderRepo, waveRepo, ledger, queues, recorder, clk, logger,
	)
	packing := packapp.NewPackingService(slipRepo, orderRepo, queues, recorder, clk, logger)
	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("label-storage"), logger)
	shipping := shipapp.NewShippingService(
		shipmemory.NewCarrierRepository(),
		shipmemory.NewShipmentRepository(),
		slipRepo, orderRepo, blob.NewMemory(), breaker, recorder, clk, logger,
	)
	dispatcher := laborapp.NewDispatcherService(
		labormemory.NewStaffRepository(),
		labormemory.NewEquipmentRepository(),
		labormemory.NewAssignmentRepository(),
		queues, recorder, clk, logger,
	)

	m := metrics.New(metrics.DefaultConfig())
	w := New(orders, picking, shipping, dispatcher, queues, m, logger)
	w.Register()

	return &workerFixture{
		worker:     w,
		queues:     queues,
		orders:     orders,
		ledger:     ledger,
		planner:    planner,
		picking:    picking,
		packing:    packing,
		shipping:   shipping,
		dispatcher: dispatcher,
		metrics:    m,
		clock:      clk,
	}
}

func (f *workerFixture) drain(t *testing.T, name string) int {
	t.Helper()
	processed, err := f.queues.Drain(context.Background(), name, 16)
	require.NoError(t, err)
	return processed
}

func TestPipelineEndToEnd(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustInventory(ctx, "SKU-1", "A-01-01", 20, "receiving")
	require.NoError(t, err)

	require.NoError(t, f.shipping.RegisterCarrier(ctx, &shipdomain.Carrier{
		CarrierID:    "FAST",
		Name:         "Fast Freight",
		Active:       true,
		ServiceAreas: []string{"*"},
		Rates:        shipdomain.Rates{BaseRate: 5, PerKgRate: 1, VolumetricRate: 10},
		TransitDays: map[shipdomain.ServiceLevel]int{
			shipdomain.ServiceTwoDay: 2,
		},
	}))

	_, err = f.dispatcher.RegisterStaff(ctx, "EMP-1", "Picker", []string{"picking"})
	require.NoError(t, err)
	_, err = f.dispatcher.RegisterStaff(ctx, "EMP-2", "Packer", []string{"packing"})
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctx, orapp.CreateOrderCommand{
		OrderNumber: "SO-1",
		Customer:    ordomain.Customer{CustomerID: "C1", State: "CA"},
		Priority:    ordomain.PriorityNormal,
		Lines: []orapp.CreateOrderLine{
			{SKU: "SKU-1", UnitPrice: 12.50, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.drain(t, queue.Validation))
	assert.Equal(t, 1, f.drain(t, queue.Allocation))

	order, err := f.orders.GetOrder(ctx, "SO-1")
	require.NoError(t, err)
	require.Equal(t, ordomain.OrderStatusAllocated, order.Status)

	_, err = f.planner.CreateWave(ctx, "W1", wavedomain.StrategyStandard)
	require.NoError(t, err)
	_, err = f.planner.PlanWave(ctx, "W1", waveapp.PlanWaveCriteria{})
	require.NoError(t, err)
	_, err = f.planner.ReleaseWave(ctx, "W1")
	require.NoError(t, err)

	// one drain covers both wave expansion and floor dispatch: expansion
	// publishes the generated pick task back onto the picking queue mid-drain
	assert.Equal(t, 2, f.drain(t, queue.Picking))
	assert.Equal(t, 0, f.queues.Depth(queue.Picking))

	tasks, err := f.picking.GetWaveTasks(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = f.picking.CompletePickTask(ctx, tasks[0].TaskID, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, f.drain(t, queue.Packing))

	_, err = f.packing.CompletePackingOrder(ctx, packapp.PackOrderCommand{
		OrderNumber: "SO-1",
		Packages: []packapp.PackageInput{{
			WeightKg:   2.5,
			Dimensions: packdomain.Dimensions{LengthCm: 40, WidthCm: 30, HeightCm: 20},
			Contents:   []packdomain.PackedItem{{SKU: "SKU-1", Quantity: 5}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.drain(t, queue.Shipping))

	shipment, err := f.shipping.GetOrderShipment(ctx, "SO-1")
	require.NoError(t, err)
	require.NotNil(t, shipment)
	assert.Equal(t, shipdomain.ShipmentStatusManifested, shipment.Status)
	assert.Equal(t, "FAST", shipment.CarrierID)
	require.Len(t, shipment.Packages, 1)
	assert.NotEmpty(t, shipment.Packages[0].TrackingNumber)

	_, err = f.shipping.UpdateShipmentTracking(ctx, shipment.ShipmentID, "PICKED_UP", "LAX", "picked up")
	require.NoError(t, err)

	order, err = f.orders.GetOrder(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusShipped, order.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.OrdersValidated.WithLabelValues(string(ordomain.OrderStatusValidated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.OrdersAllocated.WithLabelValues(string(ordomain.OrderStatusAllocated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ShipmentsCreated.WithLabelValues("FAST")))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.AllocationShortfalls))
}

func TestAllocationShortfallIsCounted(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	_, err := f.ledger.AdjustInventory(ctx, "SKU-1", "A-01-01", 5, "receiving")
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctx, orapp.CreateOrderCommand{
		OrderNumber: "SO-1",
		Customer:    ordomain.Customer{CustomerID: "C1", State: "CA"},
		Priority:    ordomain.PriorityNormal,
		Lines: []orapp.CreateOrderLine{
			{SKU: "SKU-1", UnitPrice: 12.50, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.drain(t, queue.Validation))

	// stock shrinks between validation and allocation; the order books
	// what it can and lands partially allocated
	_, err = f.ledger.AdjustInventory(ctx, "SKU-1", "A-01-01", -2, "cycle-count")
	require.NoError(t, err)

	assert.Equal(t, 1, f.drain(t, queue.Allocation))

	order, err := f.orders.GetOrder(ctx, "SO-1")
	require.NoError(t, err)
	require.Equal(t, ordomain.OrderStatusPartiallyAllocated, order.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.OrdersAllocated.WithLabelValues(string(ordomain.OrderStatusPartiallyAllocated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AllocationShortfalls))
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	// a payload missing its order number never becomes processable
	require.NoError(t, f.queues.Publish(ctx, queue.Validation, map[string]string{"bogus": "x"}))

	assert.Equal(t, 1, f.drain(t, queue.Validation))
	assert.Equal(t, 0, f.queues.Depth(queue.Validation))
}

func TestUnknownOrderIsDropped(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queues.Publish(ctx, queue.Validation, queue.OrderWork{OrderNumber: "SO-MISSING"}))

	assert.Equal(t, 1, f.drain(t, queue.Validation))
	assert.Equal(t, 0, f.queues.Depth(queue.Validation))
}

func TestPickDispatchWithoutIdleWorkerStaysQueued(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queues.Publish(ctx, queue.Picking, queue.PickWork{TaskID: "PT-1"}))

	// Drain surfaces the retryable failure; the message is redelivered by
	// the runtime rather than dropped
	_, err := f.queues.Drain(ctx, queue.Picking, 1)
	require.Error(t, err)
}
