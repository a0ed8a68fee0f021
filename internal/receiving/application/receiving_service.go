package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	facdomain "github.com/wms-platform/fulfillment/internal/facility/domain"
	invdomain "github.com/wms-platform/fulfillment/internal/inventory/domain"
	"github.com/wms-platform/fulfillment/internal/receiving/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// DockBuffer is the minimum spacing between appointments on one door
const DockBuffer = 2 * time.Hour

// maxDockAttempts bounds the forward search for a free slot
const maxDockAttempts = 12

// defaultStaging receives stock when the ASN has no dock door booked
const defaultStaging = "RECEIVING"

// InventoryLedger is the slice of the ledger receiving needs
type InventoryLedger interface {
	AdjustInventory(ctx context.Context, sku, locationCode string, delta int, reason string) (*invdomain.InventoryRecord, error)
	CreateLot(ctx context.Context, lotNumber, sku string, quantity int, manufactured, expires time.Time) (*invdomain.Lot, error)
}

// LocationDirectory is the slice of the facility directory receiving needs
type LocationDirectory interface {
	FindLocations(ctx context.Context, filter facdomain.LocationFilter) ([]*facdomain.Location, error)
	CandidatesFor(ctx context.Context, sku string, filter facdomain.LocationFilter) ([]*facdomain.Location, error)
	ReserveCapacity(ctx context.Context, code string, quantity int) error
}

// CreatePurchaseOrderCommand announces an inbound commitment
type CreatePurchaseOrderCommand struct {
	PONumber     string          `validate:"required"`
	Supplier     domain.Supplier `validate:"required"`
	Lines        []POLineInput   `validate:"required,min=1,dive"`
	ExpectedDate time.Time
}

// POLineInput is one expected line
type POLineInput struct {
	SKU         string `validate:"required"`
	Description string
	Quantity    int     `validate:"required,gt=0"`
	UnitCost    float64 `validate:"gte=0"`
}

// ProcessASNCommand registers an ASN against a purchase order
type ProcessASNCommand struct {
	ASNNumber       string `validate:"required"`
	PONumber        string `validate:"required"`
	Carrier         string
	ExpectedArrival time.Time
	Lines           []ASNLineInput `validate:"required,min=1,dive"`
	ScheduleDock    bool
}

// ASNLineInput is one announced line
type ASNLineInput struct {
	SKU        string `validate:"required"`
	Quantity   int    `validate:"required,gt=0"`
	LotNumber  string
	ExpiryDate *time.Time
}

// ProcessReceivedItemCommand records one inspected line
type ProcessReceivedItemCommand struct {
	ReceiptNumber  string         `validate:"required"`
	SKU            string         `validate:"required"`
	ActualQuantity int            `validate:"gte=0"`
	Quality        domain.Quality `validate:"required,oneof=accepted damaged quarantine"`
	LotNumber      string
	ExpiryDate     *time.Time
}

// ReceivingService runs the inbound flow from purchase order to put-away
type ReceivingService struct {
	purchaseOrders domain.PurchaseOrderRepository
	asns           domain.ASNRepository
	appointments   domain.DockAppointmentRepository
	receipts       domain.ReceiptRepository
	tasks          domain.ReceivingTaskRepository
	discrepancies  domain.DiscrepancyRepository
	putAways       domain.PutAwayTaskRepository
	ledger         InventoryLedger
	directory      LocationDirectory
	queues         queue.Publisher
	publisher      events.Publisher
	clock          clock.Clock
	logger         *logging.Logger
}

// NewReceivingService wires the inbound flow
func NewReceivingService(
	purchaseOrders domain.PurchaseOrderRepository,
	asns domain.ASNRepository,
	appointments domain.DockAppointmentRepository,
	receipts domain.ReceiptRepository,
	tasks domain.ReceivingTaskRepository,
	discrepancies domain.DiscrepancyRepository,
	putAways domain.PutAwayTaskRepository,
	ledger InventoryLedger,
	directory LocationDirectory,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *ReceivingService {
	return &ReceivingService{
		purchaseOrders: purchaseOrders,
		asns:           asns,
		appointments:   appointments,
		receipts:       receipts,
		tasks:          tasks,
		discrepancies:  discrepancies,
		putAways:       putAways,
		ledger:         ledger,
		directory:      directory,
		queues:         queues,
		publisher:      publisher,
		clock:          clk,
		logger:         logger.WithComponent("receiving"),
	}
}

// CreatePurchaseOrder registers an open purchase order
func (s *ReceivingService) CreatePurchaseOrder(ctx context.Context, cmd CreatePurchaseOrderCommand) (*domain.PurchaseOrder, error) {
	existing, err := s.purchaseOrders.FindByNumber(ctx, cmd.PONumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("purchase order", cmd.PONumber)
	}

	lines := make([]domain.POLine, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		lines = append(lines, domain.POLine{
			SKU:             l.SKU,
			Description:     l.Description,
			OrderedQuantity: l.Quantity,
			UnitCost:        l.UnitCost,
		})
	}
	po, err := domain.NewPurchaseOrder(cmd.PONumber, cmd.Supplier, lines, cmd.ExpectedDate)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	if err := s.purchaseOrders.Save(ctx, po); err != nil {
		return nil, err
	}
	s.logger.Info("purchase order created", "poNumber", po.PONumber, "lines", len(po.Lines))
	return po, nil
}

// GetPurchaseOrder looks up a purchase order by number
func (s *ReceivingService) GetPurchaseOrder(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	po, err := s.purchaseOrders.FindByNumber(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, errors.ErrNotFoundWithID("purchase order", poNumber)
	}
	return po, nil
}

// ProcessASN registers an advance ship notice and optionally books the first
// conflict-free dock slot across active dock doors
func (s *ReceivingService) ProcessASN(ctx context.Context, cmd ProcessASNCommand) (*domain.ASN, error) {
	if _, err := s.GetPurchaseOrder(ctx, cmd.PONumber); err != nil {
		return nil, err
	}
	existing, err := s.asns.FindByNumber(ctx, cmd.ASNNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("asn", cmd.ASNNumber)
	}

	lines := make([]domain.ASNLine, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		lines = append(lines, domain.ASNLine{
			SKU:        l.SKU,
			Quantity:   l.Quantity,
			LotNumber:  l.LotNumber,
			ExpiryDate: l.ExpiryDate,
		})
	}
	asn, err := domain.NewASN(cmd.ASNNumber, cmd.PONumber, lines, cmd.ExpectedArrival)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	asn.Carrier = cmd.Carrier

	if cmd.ScheduleDock {
		if err := s.scheduleDock(ctx, asn); err != nil {
			return nil, err
		}
	}

	if err := s.asns.Save(ctx, asn); err != nil {
		return nil, err
	}
	s.logger.Info("asn processed",
		"asnNumber", asn.ASNNumber,
		"poNumber", asn.PONumber,
		"dockDoor", asn.DockDoor)
	return asn, nil
}

// scheduleDock walks candidate times forward in buffer-sized steps and books
// the first door with no appointment inside the buffer window
func (s *ReceivingService) scheduleDock(ctx context.Context, asn *domain.ASN) error {
	doors, err := s.directory.FindLocations(ctx, facdomain.LocationFilter{
		Type:       facdomain.LocationTypeReceiving,
		ActiveOnly: true,
	})
	if err != nil {
		return err
	}
	if len(doors) == 0 {
		return errors.ErrConflict("no active dock doors available")
	}

	at := asn.ExpectedArrival
	for attempt := 0; attempt < maxDockAttempts; attempt++ {
		for _, door := range doors {
			booked, err := s.appointments.FindByDoorBetween(ctx, door.Code, at.Add(-DockBuffer), at.Add(DockBuffer))
			if err != nil {
				return err
			}
			conflict := false
			for _, b := range booked {
				if b.ConflictsWith(at, DockBuffer) {
					conflict = true
					break
				}
			}
			if conflict {
				continue
			}

			appointment := &domain.DockAppointment{
				AppointmentID: uuid.NewString(),
				ASNNumber:     asn.ASNNumber,
				Door:          door.Code,
				ScheduledAt:   at,
				CreatedAt:     s.clock.Now(),
			}
			if err := s.appointments.Save(ctx, appointment); err != nil {
				return err
			}
			if err := asn.Schedule(door.Code, at); err != nil {
				return errors.ErrConflict(err.Error())
			}
			s.publisher.Publish(ctx, domain.ASNScheduledEvent{
				ASNNumber:   asn.ASNNumber,
				Door:        door.Code,
				ScheduledAt: at,
				Timestamp:   s.clock.Now(),
			})
			return nil
		}
		at = at.Add(DockBuffer)
	}
	return errors.ErrConflict(fmt.Sprintf("no dock slot free within %d attempts", maxDockAttempts))
}

// StartReceiving marks the ASN arrived, opens a receipt and spawns one
// receiving task per expected line
func (s *ReceivingService) StartReceiving(ctx context.Context, asnNumber string) (*domain.Receipt, error) {
	asn, err := s.asns.FindByNumber(ctx, asnNumber)
	if err != nil {
		return nil, err
	}
	if asn == nil {
		return nil, errors.ErrNotFoundWithID("asn", asnNumber)
	}
	if err := asn.MarkArrived(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	receipt, err := domain.NewReceipt("RCPT-"+uuid.NewString()[:8], asn.ASNNumber, asn.PONumber)
	if err != nil {
		return nil, err
	}
	receipt.StartedAt = s.clock.Now()

	for _, line := range asn.Lines {
		task := &domain.ReceivingTask{
			TaskID:           uuid.NewString(),
			ReceiptNumber:    receipt.ReceiptNumber,
			SKU:              line.SKU,
			ExpectedQuantity: line.Quantity,
			Status:           domain.ReceivingTaskPending,
			CreatedAt:        s.clock.Now(),
		}
		if err := s.tasks.Save(ctx, task); err != nil {
			return nil, err
		}
	}

	if err := s.receipts.Save(ctx, receipt); err != nil {
		return nil, err
	}
	if err := s.asns.Save(ctx, asn); err != nil {
		return nil, err
	}
	s.logger.Info("receiving started",
		"asnNumber", asnNumber,
		"receiptNumber", receipt.ReceiptNumber,
		"tasks", len(asn.Lines))
	return receipt, nil
}

// ProcessReceivedItem inspects one line. A quantity mismatch opens a
// discrepancy report and continues; accepted stock lands in the ledger at
// the staging location and gets a put-away task.
func (s *ReceivingService) ProcessReceivedItem(ctx context.Context, cmd ProcessReceivedItemCommand) (*domain.Receipt, error) {
	receipt, err := s.receipts.FindByNumber(ctx, cmd.ReceiptNumber)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, errors.ErrNotFoundWithID("receipt", cmd.ReceiptNumber)
	}

	expected := 0
	task, err := s.tasks.FindByReceiptAndSKU(ctx, cmd.ReceiptNumber, cmd.SKU)
	if err != nil {
		return nil, err
	}
	if task != nil {
		expected = task.ExpectedQuantity
	}

	line := domain.ReceiptLine{
		SKU:              cmd.SKU,
		ExpectedQuantity: expected,
		ReceivedQuantity: cmd.ActualQuantity,
		Quality:          cmd.Quality,
		LotNumber:        cmd.LotNumber,
	}
	if err := receipt.RecordLine(line); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	if line.HasDiscrepancy() {
		if err := s.openDiscrepancy(ctx, receipt, line); err != nil {
			return nil, err
		}
	}

	if cmd.Quality == domain.QualityAccepted && cmd.ActualQuantity > 0 {
		if err := s.receiveStock(ctx, receipt, cmd); err != nil {
			return nil, err
		}
	}

	if task != nil && task.Status == domain.ReceivingTaskPending {
		if err := task.Complete(s.clock.Now()); err == nil {
			if err := s.tasks.Save(ctx, task); err != nil {
				return nil, err
			}
		}
	}

	if err := s.receipts.Save(ctx, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *ReceivingService) openDiscrepancy(ctx context.Context, receipt *domain.Receipt, line domain.ReceiptLine) error {
	report := domain.NewDiscrepancyReport(
		uuid.NewString(), receipt.ReceiptNumber, line.SKU,
		line.ExpectedQuantity, line.ReceivedQuantity, s.clock.Now())
	if err := s.discrepancies.Save(ctx, report); err != nil {
		return err
	}

	if err := s.queues.Publish(ctx, queue.Exceptions, queue.ExceptionWork{
		Kind:      queue.ExceptionDiscrepancy,
		Reference: report.ReportID,
		Detail:    fmt.Sprintf("%s: expected %d, received %d", line.SKU, line.ExpectedQuantity, line.ReceivedQuantity),
	}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue discrepancy", "reportId", report.ReportID)
	}
	s.publisher.Publish(ctx, domain.DiscrepancyOpenedEvent{
		ReportID:      report.ReportID,
		ReceiptNumber: receipt.ReceiptNumber,
		SKU:           line.SKU,
		Expected:      line.ExpectedQuantity,
		Actual:        line.ReceivedQuantity,
		Type:          report.Type,
		Timestamp:     s.clock.Now(),
	})
	s.logger.Warn("receiving discrepancy",
		"receiptNumber", receipt.ReceiptNumber,
		"sku", line.SKU,
		"expected", line.ExpectedQuantity,
		"actual", line.ReceivedQuantity)
	return nil
}

func (s *ReceivingService) receiveStock(ctx context.Context, receipt *domain.Receipt, cmd ProcessReceivedItemCommand) error {
	staging := s.stagingFor(ctx, receipt)

	if _, err := s.ledger.AdjustInventory(ctx, cmd.SKU, staging, cmd.ActualQuantity,
		"receipt "+receipt.ReceiptNumber); err != nil {
		return err
	}
	if cmd.LotNumber != "" {
		expires := s.clock.Now().AddDate(1, 0, 0)
		if cmd.ExpiryDate != nil {
			expires = *cmd.ExpiryDate
		}
		if _, err := s.ledger.CreateLot(ctx, cmd.LotNumber, cmd.SKU, cmd.ActualQuantity, s.clock.Now(), expires); err != nil {
			s.logger.WithError(err).Warn("failed to create lot", "lotNumber", cmd.LotNumber)
		}
	}

	target, err := s.selectPutAwayLocation(ctx, cmd.SKU, cmd.ActualQuantity)
	if err != nil {
		return err
	}
	task, err := domain.NewPutAwayTask(uuid.NewString(), cmd.SKU, cmd.ActualQuantity, staging, target.Code, s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.putAways.Save(ctx, task); err != nil {
		return err
	}
	if err := s.directory.ReserveCapacity(ctx, target.Code, cmd.ActualQuantity); err != nil {
		s.logger.WithError(err).Warn("failed to reserve put-away capacity", "location", target.Code)
	}

	if err := s.queues.Publish(ctx, queue.PutAway, queue.PutAwayWork{TaskID: task.TaskID}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue put-away task", "taskId", task.TaskID)
	}
	s.publisher.Publish(ctx, domain.PutAwayCreatedEvent{
		TaskID:       task.TaskID,
		SKU:          task.SKU,
		Quantity:     task.Quantity,
		FromLocation: task.FromLocation,
		ToLocation:   task.ToLocation,
		Timestamp:    s.clock.Now(),
	})
	return nil
}

func (s *ReceivingService) stagingFor(ctx context.Context, receipt *domain.Receipt) string {
	asn, err := s.asns.FindByNumber(ctx, receipt.ASNNumber)
	if err == nil && asn != nil && asn.DockDoor != "" {
		return asn.DockDoor
	}
	return defaultStaging
}

// CompleteReceiving closes the receipt, rolls quantities into the purchase
// order and completes the ASN
func (s *ReceivingService) CompleteReceiving(ctx context.Context, receiptNumber string) (*domain.Receipt, error) {
	receipt, err := s.receipts.FindByNumber(ctx, receiptNumber)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, errors.ErrNotFoundWithID("receipt", receiptNumber)
	}
	if err := receipt.Complete(s.clock.Now()); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	po, err := s.purchaseOrders.FindByNumber(ctx, receipt.PONumber)
	if err != nil {
		return nil, err
	}
	if po != nil {
		for _, line := range receipt.Lines {
			if line.ReceivedQuantity <= 0 {
				continue
			}
			if err := po.RecordReceipt(line.SKU, line.ReceivedQuantity); err != nil {
				s.logger.WithError(err).Warn("failed to roll receipt into purchase order",
					"poNumber", po.PONumber, "sku", line.SKU)
			}
		}
		if err := s.purchaseOrders.Save(ctx, po); err != nil {
			return nil, err
		}
	}

	asn, err := s.asns.FindByNumber(ctx, receipt.ASNNumber)
	if err != nil {
		return nil, err
	}
	if asn != nil {
		if err := asn.MarkCompleted(); err == nil {
			if err := s.asns.Save(ctx, asn); err != nil {
				return nil, err
			}
		}
	}

	if err := s.receipts.Save(ctx, receipt); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, domain.ReceiptCompletedEvent{
		ReceiptNumber: receipt.ReceiptNumber,
		ASNNumber:     receipt.ASNNumber,
		Status:        receipt.Status,
		Timestamp:     s.clock.Now(),
	})
	s.logger.Info("receiving completed",
		"receiptNumber", receiptNumber,
		"status", string(receipt.Status))
	return receipt, nil
}

// CompletePutAway moves the stock from staging to the target location
func (s *ReceivingService) CompletePutAway(ctx context.Context, taskID string) (*domain.PutAwayTask, error) {
	task, err := s.putAways.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.ErrNotFoundWithID("put-away task", taskID)
	}
	if err := task.Complete(s.clock.Now()); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	reason := "put-away " + task.TaskID
	if _, err := s.ledger.AdjustInventory(ctx, task.SKU, task.FromLocation, -task.Quantity, reason); err != nil {
		return nil, err
	}
	if _, err := s.ledger.AdjustInventory(ctx, task.SKU, task.ToLocation, task.Quantity, reason); err != nil {
		return nil, err
	}

	if err := s.putAways.Save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("put-away completed",
		"taskId", taskID,
		"sku", task.SKU,
		"to", task.ToLocation)
	return task, nil
}
