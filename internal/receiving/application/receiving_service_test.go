package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	facapp "github.com/wms-platform/fulfillment/internal/facility/application"
	facdomain "github.com/wms-platform/fulfillment/internal/facility/domain"
	facmemory "github.com/wms-platform/fulfillment/internal/facility/infrastructure/memory"
	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invmemory "github.com/wms-platform/fulfillment/internal/inventory/infrastructure/memory"
	"github.com/wms-platform/fulfillment/internal/receiving/domain"
	"github.com/wms-platform/fulfillment/internal/receiving/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

type receivingFixture struct {
	receiving     *ReceivingService
	ledger        *invapp.LedgerService
	directory     *facapp.DirectoryService
	appointments  *memory.DockAppointmentRepository
	discrepancies *memory.DiscrepancyRepository
	putAways      *memory.PutAwayTaskRepository
	queues        *queue.Memory
	recorder      *events.Recorder
	clock         *clock.Fake
}

func newReceivingFixture(t *testing.T) *receivingFixture {
	t.Helper()

	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()
	queues := queue.NewMemory(64)

	ledger := invapp.NewLedgerService(
		invmemory.NewRecordRepository(),
		invmemory.NewTransactionRepository(),
		invmemory.NewAllocationRepository(),
		invmemory.NewLotRepository(),
		recorder, clk, logger,
	)
	directory := facapp.NewDirectoryService(
		facmemory.NewLocationRepository(),
		facmemory.NewProductRepository(),
		logger,
	)

	appointments := memory.NewDockAppointmentRepository()
	discrepancies := memory.NewDiscrepancyRepository()
	putAways := memory.NewPutAwayTaskRepository()

	receiving := NewReceivingService(
		memory.NewPurchaseOrderRepository(),
		memory.NewASNRepository(),
		appointments,
		memory.NewReceiptRepository(),
		memory.NewReceivingTaskRepository(),
		discrepancies,
		putAways,
		ledger, directory, queues, recorder, clk, logger,
	)

	return &receivingFixture{
		receiving:     receiving,
		ledger:        ledger,
		directory:     directory,
		appointments:  appointments,
		discrepancies: discrepancies,
		putAways:      putAways,
		queues:        queues,
		recorder:      recorder,
		clock:         clk,
	}
}

func (f *receivingFixture) addLocation(t *testing.T, code string, locType facdomain.LocationType, zone string, forwardPick bool, capacity int) {
	t.Helper()
	_, err := f.directory.CreateLocation(context.Background(), facapp.CreateLocationCommand{
		Code:        code,
		Type:        string(locType),
		Hierarchy:   facdomain.Hierarchy{Warehouse: "W1", Zone: zone},
		ForwardPick: forwardPick,
		Capacity:    capacity,
	})
	require.NoError(t, err)
}

func (f *receivingFixture) addProduct(t *testing.T, sku string) {
	t.Helper()
	product, err := facdomain.NewProduct(sku, sku)
	require.NoError(t, err)
	require.NoError(t, f.directory.CreateProduct(context.Background(), product))
}

func (f *receivingFixture) announce(t *testing.T, asnNumber string, scheduleDock bool, lines ...ASNLineInput) *domain.ASN {
	t.Helper()
	ctx := context.Background()
	_, err := f.receiving.CreatePurchaseOrder(ctx, CreatePurchaseOrderCommand{
		PONumber: "PO-" + asnNumber,
		Supplier: domain.Supplier{SupplierID: "S1", Name: "Acme Supply"},
		Lines: func() []POLineInput {
			var pol []POLineInput
			for _, l := range lines {
				pol = append(pol, POLineInput{SKU: l.SKU, Quantity: l.Quantity, UnitCost: 1})
			}
			return pol
		}(),
		ExpectedDate: f.clock.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	asn, err := f.receiving.ProcessASN(ctx, ProcessASNCommand{
		ASNNumber:       asnNumber,
		PONumber:        "PO-" + asnNumber,
		ExpectedArrival: f.clock.Now().Add(24 * time.Hour),
		Lines:           lines,
		ScheduleDock:    scheduleDock,
	})
	require.NoError(t, err)
	return asn
}

func TestProcessASNSchedulesFirstFreeDoor(t *testing.T) {
	f := newReceivingFixture(t)
	f.addLocation(t, "DOCK-1", facdomain.LocationTypeReceiving, "DOCK", false, 0)
	f.addLocation(t, "DOCK-2", facdomain.LocationTypeReceiving, "DOCK", false, 0)

	asn := f.announce(t, "ASN-1", true, ASNLineInput{SKU: "A1", Quantity: 10})

	assert.Equal(t, domain.ASNStatusScheduled, asn.Status)
	assert.Equal(t, "DOCK-1", asn.DockDoor)
	require.NotNil(t, asn.AppointmentAt)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), *asn.AppointmentAt)
}

func TestProcessASNSkipsDoorBookedWithinBuffer(t *testing.T) {
	f := newReceivingFixture(t)
	f.addLocation(t, "DOCK-1", facdomain.LocationTypeReceiving, "DOCK", false, 0)
	f.addLocation(t, "DOCK-2", facdomain.LocationTypeReceiving, "DOCK", false, 0)

	first := f.announce(t, "ASN-1", true, ASNLineInput{SKU: "A1", Quantity: 10})
	// Same arrival time: DOCK-1 is taken within the 2h buffer, so the
	// second ASN lands on DOCK-2 at the same slot.
	second := f.announce(t, "ASN-2", true, ASNLineInput{SKU: "B2", Quantity: 5})

	assert.Equal(t, "DOCK-1", first.DockDoor)
	assert.Equal(t, "DOCK-2", second.DockDoor)
	assert.Equal(t, *first.AppointmentAt, *second.AppointmentAt)
}

func TestProcessASNAdvancesTimeWhenAllDoorsBusy(t *testing.T) {
	f := newReceivingFixture(t)
	f.addLocation(t, "DOCK-1", facdomain.LocationTypeReceiving, "DOCK", false, 0)

	first := f.announce(t, "ASN-1", true, ASNLineInput{SKU: "A1", Quantity: 10})
	second := f.announce(t, "ASN-2", true, ASNLineInput{SKU: "B2", Quantity: 5})

	require.NotNil(t, second.AppointmentAt)
	assert.Equal(t, first.AppointmentAt.Add(DockBuffer), *second.AppointmentAt)
}

func TestProcessASNNoDockDoors(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	_, err := f.receiving.CreatePurchaseOrder(ctx, CreatePurchaseOrderCommand{
		PONumber: "PO-1",
		Supplier: domain.Supplier{SupplierID: "S1"},
		Lines:    []POLineInput{{SKU: "A1", Quantity: 1, UnitCost: 1}},
	})
	require.NoError(t, err)

	_, err = f.receiving.ProcessASN(ctx, ProcessASNCommand{
		ASNNumber:       "ASN-1",
		PONumber:        "PO-1",
		ExpectedArrival: f.clock.Now(),
		Lines:           []ASNLineInput{{SKU: "A1", Quantity: 1}},
		ScheduleDock:    true,
	})
	assert.Error(t, err)
}

func TestStartReceivingSpawnsTaskPerLine(t *testing.T) {
	f := newReceivingFixture(t)
	f.announce(t, "ASN-1", false,
		ASNLineInput{SKU: "A1", Quantity: 10},
		ASNLineInput{SKU: "B2", Quantity: 4},
	)

	receipt, err := f.receiving.StartReceiving(context.Background(), "ASN-1")
	require.NoError(t, err)

	assert.Equal(t, domain.ReceiptStatusInProgress, receipt.Status)
	task, err := f.receiving.tasks.FindByReceiptAndSKU(context.Background(), receipt.ReceiptNumber, "A1")
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, 10, task.ExpectedQuantity)
}

func TestProcessReceivedItemExactQuantity(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)

	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 10,
		Quality:        domain.QualityAccepted,
	})
	require.NoError(t, err)

	// Stock lands at staging, a put-away task is enqueued
	summary, err := f.ledger.GetInventory(ctx, "A1", defaultStaging)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Quantity)

	pending, err := f.putAways.FindByStatus(ctx, domain.PutAwayPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "STOR-01", pending[0].ToLocation)
	assert.Equal(t, 1, f.queues.Depth(queue.PutAway))

	open, err := f.discrepancies.FindOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestProcessReceivedItemShortOpensDiscrepancy(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)

	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 7,
		Quality:        domain.QualityAccepted,
	})
	require.NoError(t, err)

	open, err := f.discrepancies.FindOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, domain.DiscrepancyShortage, open[0].Type)
	assert.Equal(t, 10, open[0].Expected)
	assert.Equal(t, 7, open[0].Actual)
	assert.Equal(t, 1, f.queues.Depth(queue.Exceptions))

	// Discrepancy is non-fatal: the 7 accepted units still land in stock
	summary, err := f.ledger.GetInventory(ctx, "A1", defaultStaging)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Quantity)
}

func TestProcessReceivedItemOverageOpensDiscrepancy(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)

	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 12,
		Quality:        domain.QualityAccepted,
	})
	require.NoError(t, err)

	open, err := f.discrepancies.FindOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, domain.DiscrepancyOverage, open[0].Type)
}

func TestProcessReceivedItemQuarantineSkipsLedger(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)

	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 10,
		Quality:        domain.QualityQuarantine,
	})
	require.NoError(t, err)

	summary, err := f.ledger.GetInventory(ctx, "A1", "")
	require.NoError(t, err)
	assert.Zero(t, summary.Quantity)
	assert.Zero(t, f.queues.Depth(queue.PutAway))
}

func TestPutAwayScoringPrefersPickingZone(t *testing.T) {
	f := newReceivingFixture(t)
	f.addProduct(t, "A1")
	// Listed capacity-fitting storage first so ties cannot hide the ranking
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.addLocation(t, "FWD-01", facdomain.LocationTypeStorage, "B", true, 100)
	f.addLocation(t, "PICK-01", facdomain.LocationTypePicking, "C", false, 100)

	loc, err := f.receiving.selectPutAwayLocation(context.Background(), "A1", 10)
	require.NoError(t, err)
	// picking (100+20) beats forward-pick storage (50+20) beats plain (20)
	assert.Equal(t, "PICK-01", loc.Code)
}

func TestPutAwayScoringCapacityAndShippingAdjacency(t *testing.T) {
	f := newReceivingFixture(t)
	f.addProduct(t, "A1")
	f.addLocation(t, "SHIP-01", facdomain.LocationTypeShipping, "OUT", false, 0)
	// Both plain storage: one too small, one in the shipping zone
	f.addLocation(t, "STOR-SMALL", facdomain.LocationTypeStorage, "A", false, 5)
	f.addLocation(t, "STOR-OUT", facdomain.LocationTypeStorage, "OUT", false, 100)

	loc, err := f.receiving.selectPutAwayLocation(context.Background(), "A1", 10)
	require.NoError(t, err)
	// capacity (20) + shipping adjacency (10) beats neither (0)
	assert.Equal(t, "STOR-OUT", loc.Code)
}

func TestPutAwayScoringTieBrokenByListOrder(t *testing.T) {
	f := newReceivingFixture(t)
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.addLocation(t, "STOR-02", facdomain.LocationTypeStorage, "A", false, 100)

	loc, err := f.receiving.selectPutAwayLocation(context.Background(), "A1", 10)
	require.NoError(t, err)
	assert.Equal(t, "STOR-01", loc.Code)
}

func TestCompleteReceivingRollsIntoPurchaseOrder(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)

	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 10,
		Quality:        domain.QualityAccepted,
	})
	require.NoError(t, err)

	done, err := f.receiving.CompleteReceiving(ctx, receipt.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusCompleted, done.Status)

	po, err := f.receiving.GetPurchaseOrder(ctx, "PO-ASN-1")
	require.NoError(t, err)
	assert.Equal(t, domain.POStatusReceived, po.Status)
	assert.Equal(t, 10, po.Lines[0].ReceivedQuantity)
}

func TestCompleteReceivingWithDiscrepancyStatus(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)

	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 7,
		Quality:        domain.QualityAccepted,
	})
	require.NoError(t, err)

	done, err := f.receiving.CompleteReceiving(ctx, receipt.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusDiscrepancy, done.Status)
}

func TestCompletePutAwayMovesStock(t *testing.T) {
	f := newReceivingFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A1")
	f.addLocation(t, "STOR-01", facdomain.LocationTypeStorage, "A", false, 100)
	f.announce(t, "ASN-1", false, ASNLineInput{SKU: "A1", Quantity: 10})
	receipt, err := f.receiving.StartReceiving(ctx, "ASN-1")
	require.NoError(t, err)
	_, err = f.receiving.ProcessReceivedItem(ctx, ProcessReceivedItemCommand{
		ReceiptNumber:  receipt.ReceiptNumber,
		SKU:            "A1",
		ActualQuantity: 10,
		Quality:        domain.QualityAccepted,
	})
	require.NoError(t, err)

	pending, err := f.putAways.FindByStatus(ctx, domain.PutAwayPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	task, err := f.receiving.CompletePutAway(ctx, pending[0].TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.PutAwayCompleted, task.Status)

	staged, err := f.ledger.GetInventory(ctx, "A1", defaultStaging)
	require.NoError(t, err)
	assert.Zero(t, staged.Quantity)

	stored, err := f.ledger.GetInventory(ctx, "A1", "STOR-01")
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Quantity)
}
