package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invmemory "github.com/wms-platform/fulfillment/internal/inventory/infrastructure/memory"
	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	ormemory "github.com/wms-platform/fulfillment/internal/orders/infrastructure/memory"
	"github.com/wms-platform/fulfillment/internal/picking/domain"
	"github.com/wms-platform/fulfillment/internal/picking/infrastructure/memory"
	wavedomain "github.com/wms-platform/fulfillment/internal/waving/domain"
	wavememory "github.com/wms-platform/fulfillment/internal/waving/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

type executorFixture struct {
	executor   *ExecutorService
	ledger     *invapp.LedgerService
	orders     *ormemory.OrderRepository
	waves      *wavememory.WaveRepository
	tasks      *memory.PickTaskRepository
	exceptions *memory.PickExceptionRepository
	queues     *queue.Memory
	clock      *clock.Fake
}

func newExecutorFixture(t *testing.T) *executorFixture {
	t.Helper()

	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()
	queues := queue.NewMemory(64)

	ledger := invapp.NewLedgerService(
		invmemory.NewRecordRepository(),
		invmemory.NewTransactionRepository(),
		invmemory.NewAllocationRepository(),
		invmemory.NewLotRepository(),
		recorder, clk, logger,
	)
	orders := ormemory.NewOrderRepository()
	waves := wavememory.NewWaveRepository()
	tasks := memory.NewPickTaskRepository()
	exceptions := memory.NewPickExceptionRepository()

	return &executorFixture{
		executor:   NewExecutorService(tasks, exceptions, orders, waves, ledger, queues, recorder, clk, logger),
		ledger:     ledger,
		orders:     orders,
		waves:      waves,
		tasks:      tasks,
		exceptions: exceptions,
		queues:     queues,
		clock:      clk,
	}
}

func (f *executorFixture) stock(t *testing.T, sku, location string, quantity int) {
	t.Helper()
	_, err := f.ledger.AdjustInventory(context.Background(), sku, location, quantity, "seed")
	require.NoError(t, err)
}

// allocatedOrder allocates every line through the ledger and saves the order
func (f *executorFixture) allocatedOrder(t *testing.T, orderNumber string, lines ...ordomain.Line) *ordomain.Order {
	t.Helper()
	ctx := context.Background()

	order, err := ordomain.NewOrder(orderNumber, ordomain.Customer{CustomerID: "C1"},
		ordomain.PriorityNormal, lines, nil)
	require.NoError(t, err)
	require.NoError(t, order.MarkValidated())

	for _, line := range lines {
		allocations, err := f.ledger.AllocateInventory(ctx, line.SKU, line.OrderedQuantity, orderNumber)
		require.NoError(t, err)
		made := 0
		ids := make([]string, 0, len(allocations))
		for _, a := range allocations {
			made += a.Quantity
			ids = append(ids, a.AllocationID)
		}
		require.NoError(t, order.ApplyAllocation(line.SKU, made, ids))
	}
	require.NoError(t, order.FinishAllocation())
	require.NoError(t, f.orders.Save(ctx, order))
	return order
}

// releasedWave releases the orders into a new wave
func (f *executorFixture) releasedWave(t *testing.T, waveID string, orderNumbers ...string) {
	t.Helper()
	ctx := context.Background()

	wave, err := wavedomain.NewWave(waveID, wavedomain.StrategyStandard)
	require.NoError(t, err)
	require.NoError(t, wave.AssignOrders(orderNumbers, wavedomain.Metrics{Orders: len(orderNumbers)}))
	require.NoError(t, wave.Release(f.clock.Now()))
	require.NoError(t, f.waves.Save(ctx, wave))

	for _, orderNumber := range orderNumbers {
		order, err := f.orders.FindByOrderNumber(ctx, orderNumber)
		require.NoError(t, err)
		require.NoError(t, order.Release(waveID))
		require.NoError(t, f.orders.Save(ctx, order))
	}
}

func TestGeneratePickTasksOnePerAllocation(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.stock(t, "B2", "B-03-02", 20)
	f.allocatedOrder(t, "SO-1",
		ordomain.Line{SKU: "A1", OrderedQuantity: 8},
		ordomain.Line{SKU: "B2", OrderedQuantity: 4})
	f.releasedWave(t, "W1", "SO-1")

	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "A-01-01", tasks[0].LocationCode)
	assert.Equal(t, 8, tasks[0].RequiredQuantity)
	assert.Equal(t, domain.PickTaskStatusPending, tasks[0].Status)
	assert.Equal(t, 2, f.queues.Depth(queue.Picking))

	order, err := f.orders.FindByOrderNumber(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusPicking, order.Status)

	wave, err := f.waves.FindByID(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, wavedomain.WaveStatusPicking, wave.Status)
}

func TestGeneratePickTasksIsIdempotent(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.allocatedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})
	f.releasedWave(t, "W1", "SO-1")

	first, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)
	second, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)

	assert.Len(t, second, len(first))
	assert.Equal(t, 1, f.queues.Depth(queue.Picking))
}

func TestGeneratePickTasksSkipsCancelledOrder(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.allocatedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})
	f.allocatedOrder(t, "SO-2", ordomain.Line{SKU: "A1", OrderedQuantity: 4})
	f.releasedWave(t, "W1", "SO-1", "SO-2")

	cancelled, err := f.orders.FindByOrderNumber(ctx, "SO-2")
	require.NoError(t, err)
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, f.orders.Save(ctx, cancelled))

	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "SO-1", tasks[0].OrderNumber)
}

func TestOptimizePickPathZoneThenLocation(t *testing.T) {
	tasks := []*domain.PickTask{
		{TaskID: "T1", LocationCode: "B-02-01"},
		{TaskID: "T2", LocationCode: "A-05-03"},
		{TaskID: "T3", LocationCode: "C-01-01"},
		{TaskID: "T4", LocationCode: "A-01-02"},
	}

	ordered := OptimizePickPath(tasks)

	codes := make([]string, len(ordered))
	for i, task := range ordered {
		codes[i] = task.LocationCode
	}
	assert.Equal(t, []string{"A-01-02", "A-05-03", "B-02-01", "C-01-01"}, codes)

	for i, task := range ordered {
		assert.Equal(t, i+1, task.PickSequence)
	}
}

func TestCompletePickTaskExact(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.allocatedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})
	f.releasedWave(t, "W1", "SO-1")
	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)

	task, err := f.executor.CompletePickTask(ctx, tasks[0].TaskID, 8)
	require.NoError(t, err)
	assert.Equal(t, domain.PickTaskStatusCompleted, task.Status)
	assert.Zero(t, f.queues.Depth(queue.Exceptions))

	// Picked stock leaves the location
	summary, err := f.ledger.GetInventory(ctx, "A1", "A-01-01")
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Quantity)
	assert.Equal(t, 0, summary.Allocated)
}

func TestCompletePickTaskShortOpensException(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.allocatedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})
	f.releasedWave(t, "W1", "SO-1")
	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)

	task, err := f.executor.CompletePickTask(ctx, tasks[0].TaskID, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.PickTaskStatusException, task.Status)
	assert.Equal(t, 1, f.queues.Depth(queue.Exceptions))

	open, err := f.exceptions.FindOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, 2, open[0].Shortfall)

	// Line stays short, no automatic re-pick
	order, err := f.orders.FindByOrderNumber(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusPicking, order.Status)
	assert.Equal(t, 6, order.Line("A1").PickedQuantity)
	assert.Zero(t, f.queues.Depth(queue.Packing))
}

func TestCompletePickTaskRejectsOverPick(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.allocatedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})
	f.releasedWave(t, "W1", "SO-1")
	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)

	_, err = f.executor.CompletePickTask(ctx, tasks[0].TaskID, 9)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestOrderFullyPickedEnqueuesPacking(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.stock(t, "B2", "B-03-02", 20)
	f.allocatedOrder(t, "SO-1",
		ordomain.Line{SKU: "A1", OrderedQuantity: 8},
		ordomain.Line{SKU: "B2", OrderedQuantity: 4})
	f.releasedWave(t, "W1", "SO-1")
	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	_, err = f.executor.CompletePickTask(ctx, tasks[0].TaskID, tasks[0].RequiredQuantity)
	require.NoError(t, err)
	assert.Zero(t, f.queues.Depth(queue.Packing))

	_, err = f.executor.CompletePickTask(ctx, tasks[1].TaskID, tasks[1].RequiredQuantity)
	require.NoError(t, err)

	order, err := f.orders.FindByOrderNumber(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusPicked, order.Status)
	assert.Equal(t, 1, f.queues.Depth(queue.Packing))
}

func TestAssignPickTask(t *testing.T) {
	f := newExecutorFixture(t)
	ctx := context.Background()

	f.stock(t, "A1", "A-01-01", 20)
	f.allocatedOrder(t, "SO-1", ordomain.Line{SKU: "A1", OrderedQuantity: 8})
	f.releasedWave(t, "W1", "SO-1")
	tasks, err := f.executor.GeneratePickTasks(ctx, "W1")
	require.NoError(t, err)

	task, err := f.executor.AssignPickTask(ctx, tasks[0].TaskID, "STAFF-7")
	require.NoError(t, err)
	assert.Equal(t, domain.PickTaskStatusAssigned, task.Status)
	assert.Equal(t, "STAFF-7", task.AssignedTo)

	_, err = f.executor.AssignPickTask(ctx, tasks[0].TaskID, "STAFF-8")
	assert.Error(t, err)
}
