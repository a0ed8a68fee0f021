package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	ormemory "github.com/wms-platform/fulfillment/internal/orders/infrastructure/memory"
	"github.com/wms-platform/fulfillment/internal/waving/domain"
	"github.com/wms-platform/fulfillment/internal/waving/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

type plannerFixture struct {
	planner *PlannerService
	orders  *ormemory.OrderRepository
	queues  *queue.Memory
	clock   *clock.Fake
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()
	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	queues := queue.NewMemory(64)
	orders := ormemory.NewOrderRepository()

	return &plannerFixture{
		planner: NewPlannerService(memory.NewWaveRepository(), orders, queues, events.NewRecorder(), clk, logger),
		orders:  orders,
		queues:  queues,
		clock:   clk,
	}
}

type seedOrder struct {
	number     string
	priority   ordomain.Priority
	orderDate  time.Time
	postalCode string
	state      string
	carrier    string
	lines      []ordomain.Line
}

// allocated stores a fully allocated order ready for wave selection
func (f *plannerFixture) allocated(t *testing.T, seed seedOrder) {
	t.Helper()
	if len(seed.lines) == 0 {
		seed.lines = []ordomain.Line{{SKU: "A1", OrderedQuantity: 1}}
	}
	order, err := ordomain.NewOrder(seed.number,
		ordomain.Customer{CustomerID: "C1", PostalCode: seed.postalCode, State: seed.state},
		seed.priority, seed.lines, nil)
	require.NoError(t, err)
	order.Carrier = seed.carrier
	order.OrderDate = seed.orderDate

	require.NoError(t, order.MarkValidated())
	for _, line := range seed.lines {
		require.NoError(t, order.ApplyAllocation(line.SKU, line.OrderedQuantity, nil))
	}
	require.NoError(t, order.FinishAllocation())
	require.NoError(t, f.orders.Save(context.Background(), order))
}

func jan(day int) time.Time {
	return time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
}

func TestPlanWaveStandardStrategy(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	// Priorities [low, urgent, normal] with dates [Jan3, Jan1, Jan2]
	f.allocated(t, seedOrder{number: "SO-LOW", priority: ordomain.PriorityLow, orderDate: jan(3)})
	f.allocated(t, seedOrder{number: "SO-URG", priority: ordomain.PriorityUrgent, orderDate: jan(1)})
	f.allocated(t, seedOrder{number: "SO-NRM", priority: ordomain.PriorityNormal, orderDate: jan(2)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []string{"SO-URG", "SO-NRM", "SO-LOW"}, wave.OrderNumbers)
}

func TestPlanWaveStandardTieBreakByDate(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	f.allocated(t, seedOrder{number: "SO-2", priority: ordomain.PriorityHigh, orderDate: jan(2)})
	f.allocated(t, seedOrder{number: "SO-1", priority: ordomain.PriorityHigh, orderDate: jan(1)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []string{"SO-1", "SO-2"}, wave.OrderNumbers)
}

func TestPlanWaveZoneBasedStrategy(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	f.allocated(t, seedOrder{number: "SO-C", orderDate: jan(1), postalCode: "30301"})
	f.allocated(t, seedOrder{number: "SO-A", orderDate: jan(2), postalCode: "10001"})
	f.allocated(t, seedOrder{number: "SO-B", orderDate: jan(3), postalCode: "20500"})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyZoneBased)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []string{"SO-A", "SO-B", "SO-C"}, wave.OrderNumbers)
}

func TestPlanWaveProductBasedStrategy(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	// SO-SHARED shares SKUs with both others; SO-LONER shares nothing
	f.allocated(t, seedOrder{number: "SO-LONER", orderDate: jan(1), lines: []ordomain.Line{
		{SKU: "ZZ", OrderedQuantity: 1},
	}})
	f.allocated(t, seedOrder{number: "SO-SHARED", orderDate: jan(2), lines: []ordomain.Line{
		{SKU: "A1", OrderedQuantity: 1},
		{SKU: "B2", OrderedQuantity: 1},
	}})
	f.allocated(t, seedOrder{number: "SO-HALF", orderDate: jan(3), lines: []ordomain.Line{
		{SKU: "A1", OrderedQuantity: 1},
	}})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyProductBased)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	assert.Equal(t, "SO-LONER", wave.OrderNumbers[2])
}

func TestPlanWaveRouteBasedStrategy(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	f.allocated(t, seedOrder{number: "SO-UPS-TX", orderDate: jan(1), carrier: "UPS", state: "TX"})
	f.allocated(t, seedOrder{number: "SO-FDX-CA", orderDate: jan(2), carrier: "FEDEX", state: "CA"})
	f.allocated(t, seedOrder{number: "SO-UPS-CA", orderDate: jan(3), carrier: "UPS", state: "CA"})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyRouteBased)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	assert.Equal(t, []string{"SO-FDX-CA", "SO-UPS-CA", "SO-UPS-TX"}, wave.OrderNumbers)
}

func TestPlanWaveCapsAtMaxOrders(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	f.allocated(t, seedOrder{number: "SO-1", priority: ordomain.PriorityUrgent, orderDate: jan(1)})
	f.allocated(t, seedOrder{number: "SO-2", priority: ordomain.PriorityHigh, orderDate: jan(2)})
	f.allocated(t, seedOrder{number: "SO-3", priority: ordomain.PriorityLow, orderDate: jan(3)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{MaxOrders: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"SO-1", "SO-2"}, wave.OrderNumbers)

	// The capped-out order stays allocated
	leftover, err := f.orders.FindByOrderNumber(ctx, "SO-3")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusAllocated, leftover.Status)
}

func TestPlanWaveStampsOrdersReleased(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	f.allocated(t, seedOrder{number: "SO-1", orderDate: jan(1)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	_, err = f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	order, err := f.orders.FindByOrderNumber(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusReleased, order.Status)
	assert.Equal(t, "W1", order.WaveID)
}

func TestPlanWaveMetrics(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	f.allocated(t, seedOrder{number: "SO-1", orderDate: jan(1), lines: []ordomain.Line{
		{SKU: "A1", OrderedQuantity: 4},
		{SKU: "B2", OrderedQuantity: 2},
	}})
	f.allocated(t, seedOrder{number: "SO-2", orderDate: jan(2), lines: []ordomain.Line{
		{SKU: "A1", OrderedQuantity: 4},
	}})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	assert.Equal(t, 2, wave.Metrics.Orders)
	assert.Equal(t, 3, wave.Metrics.Lines)
	assert.Equal(t, 10, wave.Metrics.Units)
	assert.Equal(t, 2, wave.Metrics.DistinctSKUs)
	// 0.5*10 + 2*2
	assert.InDelta(t, 9.0, wave.Metrics.EstimatedPickMinutes, 0.001)
}

func TestReleaseWaveEnqueuesPicking(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	f.allocated(t, seedOrder{number: "SO-1", orderDate: jan(1)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	_, err = f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)

	wave, err := f.planner.ReleaseWave(ctx, "W1")
	require.NoError(t, err)

	assert.Equal(t, domain.WaveStatusReleased, wave.Status)
	assert.Equal(t, 1, f.queues.Depth(queue.Picking))
}

func TestReleaseEmptyWaveFails(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)

	_, err = f.planner.ReleaseWave(ctx, "W1")
	assert.Error(t, err)
}

func TestCancelWaveReturnsOrdersToPool(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	f.allocated(t, seedOrder{number: "SO-1", orderDate: jan(1)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	_, err = f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{})
	require.NoError(t, err)
	_, err = f.planner.ReleaseWave(ctx, "W1")
	require.NoError(t, err)

	wave, err := f.planner.CancelWave(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, domain.WaveStatusCancelled, wave.Status)

	order, err := f.orders.FindByOrderNumber(ctx, "SO-1")
	require.NoError(t, err)
	assert.Equal(t, ordomain.OrderStatusAllocated, order.Status)
	assert.Empty(t, order.WaveID)
}

func TestPlanWaveFiltersByPriority(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()
	f.allocated(t, seedOrder{number: "SO-URG", priority: ordomain.PriorityUrgent, orderDate: jan(1)})
	f.allocated(t, seedOrder{number: "SO-LOW", priority: ordomain.PriorityLow, orderDate: jan(2)})

	_, err := f.planner.CreateWave(ctx, "W1", domain.StrategyStandard)
	require.NoError(t, err)
	wave, err := f.planner.PlanWave(ctx, "W1", PlanWaveCriteria{Priority: ordomain.PriorityUrgent})
	require.NoError(t, err)

	assert.Equal(t, []string{"SO-URG"}, wave.OrderNumbers)
}

func TestCreateWaveUnknownStrategy(t *testing.T) {
	f := newPlannerFixture(t)
	_, err := f.planner.CreateWave(context.Background(), "W1", domain.Strategy("chaotic"))
	assert.Error(t, err)
}
