package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/fulfillment/internal/inventory/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
)

// LedgerService is the single writer of inventory records and lots. Every
// other component mutates inventory only through its operations.
type LedgerService struct {
	records      domain.RecordRepository
	transactions domain.TransactionRepository
	allocations  domain.AllocationRepository
	lots         domain.LotRepository
	publisher    events.Publisher
	clock        clock.Clock
	logger       *logging.Logger
	keys         *keyedMutex
}

// NewLedgerService creates a LedgerService
func NewLedgerService(
	records domain.RecordRepository,
	transactions domain.TransactionRepository,
	allocations domain.AllocationRepository,
	lots domain.LotRepository,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *LedgerService {
	return &LedgerService{
		records:      records,
		transactions: transactions,
		allocations:  allocations,
		lots:         lots,
		publisher:    publisher,
		clock:        clk,
		logger:       logger.WithComponent("inventory.ledger"),
		keys:         newKeyedMutex(),
	}
}

// InventorySummary aggregates quantities for a SKU across one or all
// locations
type InventorySummary struct {
	SKU       string                    `json:"sku"`
	Quantity  int                       `json:"quantity"`
	Allocated int                       `json:"allocated"`
	OnHold    int                       `json:"onHold"`
	Available int                       `json:"available"`
	Records   []*domain.InventoryRecord `json:"records"`
}

// GetInventory aggregates available/allocated/on-hold quantities for a SKU.
// When locationCode is empty all locations are included. Read-only.
func (s *LedgerService) GetInventory(ctx context.Context, sku, locationCode string) (*InventorySummary, error) {
	var records []*domain.InventoryRecord
	if locationCode == "" {
		all, err := s.records.FindBySKU(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory for %s: %w", sku, err)
		}
		records = all
	} else {
		record, err := s.records.FindByKey(ctx, sku, locationCode)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory for %s at %s: %w", sku, locationCode, err)
		}
		if record != nil {
			records = append(records, record)
		}
	}

	summary := &InventorySummary{SKU: sku, Records: records}
	for _, r := range records {
		summary.Quantity += r.Quantity
		summary.Allocated += r.Allocated
		summary.OnHold += r.OnHold
		summary.Available += r.Available
	}
	return summary, nil
}

// AdjustInventory applies a signed quantity delta at a location, creating
// the record on a positive delta at a new key. A negative delta against a
// missing record fails with NotFound. Quantity is clamped at zero. An
// immutable transaction entry is appended for every adjustment.
func (s *LedgerService) AdjustInventory(ctx context.Context, sku, locationCode string, delta int, reason string) (*domain.InventoryRecord, error) {
	unlock := s.keys.Lock(sku + "@" + locationCode)
	defer unlock()

	record, err := s.records.FindByKey(ctx, sku, locationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load record %s@%s: %w", sku, locationCode, err)
	}

	var previous, current int
	txType := domain.TransactionAdjustment
	if record == nil {
		if delta < 0 {
			return nil, errors.ErrNotFoundWithID("inventory record", sku+"@"+locationCode)
		}
		record, err = domain.NewInventoryRecord(sku, locationCode, delta)
		if err != nil {
			return nil, errors.ErrValidation(err.Error())
		}
		previous, current = 0, delta
		txType = domain.TransactionReceipt
	} else {
		previous, current = record.Adjust(delta)
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save record %s@%s: %w", sku, locationCode, err)
	}

	tx := domain.NewInventoryTransaction(uuid.NewString(), sku, locationCode, txType, delta, previous, current, reason, "")
	if err := s.transactions.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append transaction for %s@%s: %w", sku, locationCode, err)
	}

	_ = s.publisher.Publish(ctx, &domain.InventoryAdjustedEvent{
		SKU:              sku,
		LocationCode:     locationCode,
		Delta:            delta,
		PreviousQuantity: previous,
		NewQuantity:      current,
		Reason:           reason,
		AdjustedAt:       s.clock.Now(),
	})

	s.logger.Info("Adjusted inventory", "sku", sku, "location", locationCode, "delta", delta, "reason", reason)
	return record, nil
}

// AllocateInventory reserves quantity units of a SKU for an order. Records
// with available stock are consumed oldest-created-first (FIFO), greedily.
// When total available supply falls short the partial allocations already
// made stand, and the error carries the shortfall; callers must inspect
// per-line allocated quantities.
func (s *LedgerService) AllocateInventory(ctx context.Context, sku string, quantity int, orderID string) ([]*domain.Allocation, error) {
	if quantity <= 0 {
		return nil, errors.ErrValidation("allocation quantity must be positive")
	}

	candidates, err := s.records.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory for %s: %w", sku, err)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	remaining := quantity
	var made []*domain.Allocation

	for _, candidate := range candidates {
		if remaining == 0 {
			break
		}

		allocation, take, err := s.allocateFromRecord(ctx, candidate.SKU, candidate.LocationCode, remaining, orderID)
		if err != nil {
			return made, err
		}
		if allocation == nil {
			continue
		}
		remaining -= take
		made = append(made, allocation)
	}

	if remaining > 0 {
		_ = s.publisher.Publish(ctx, &domain.AllocationShortfallEvent{
			OrderID:    orderID,
			SKU:        sku,
			Requested:  quantity,
			Allocated:  quantity - remaining,
			OccurredOn: s.clock.Now(),
		})
		s.logger.Warn("Allocation shortfall", "sku", sku, "orderId", orderID,
			"requested", quantity, "allocated", quantity-remaining)
		return made, errors.ErrInsufficientInventory(sku, quantity, quantity-remaining)
	}

	return made, nil
}

// allocateFromRecord takes up to wanted units from one record under its key
// lock, re-reading the record so concurrent allocators never double-spend
func (s *LedgerService) allocateFromRecord(ctx context.Context, sku, locationCode string, wanted int, orderID string) (*domain.Allocation, int, error) {
	unlock := s.keys.Lock(sku + "@" + locationCode)
	defer unlock()

	record, err := s.records.FindByKey(ctx, sku, locationCode)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reload record %s@%s: %w", sku, locationCode, err)
	}
	if record == nil || record.Available <= 0 {
		return nil, 0, nil
	}

	take := min(wanted, record.Available)
	if err := record.Allocate(take); err != nil {
		return nil, 0, fmt.Errorf("failed to allocate %d of %s at %s: %w", take, sku, locationCode, err)
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, 0, fmt.Errorf("failed to save record %s@%s: %w", sku, locationCode, err)
	}

	allocation := domain.NewAllocation(uuid.NewString(), orderID, sku, locationCode, take)
	if err := s.allocations.Save(ctx, allocation); err != nil {
		return nil, 0, fmt.Errorf("failed to save allocation: %w", err)
	}

	tx := domain.NewInventoryTransaction(uuid.NewString(), sku, locationCode,
		domain.TransactionAllocation, -take, record.Quantity, record.Quantity,
		"allocation", orderID)
	if err := s.transactions.Append(ctx, tx); err != nil {
		return nil, 0, fmt.Errorf("failed to append allocation transaction: %w", err)
	}

	_ = s.publisher.Publish(ctx, &domain.InventoryAllocatedEvent{
		AllocationID: allocation.AllocationID,
		OrderID:      orderID,
		SKU:          sku,
		LocationCode: locationCode,
		Quantity:     take,
		AllocatedAt:  s.clock.Now(),
	})

	return allocation, take, nil
}

// ReleaseAllocation returns an allocation's quantity to available stock,
// used when an order is cancelled before picking
func (s *LedgerService) ReleaseAllocation(ctx context.Context, allocationID string) error {
	allocation, err := s.allocations.FindByID(ctx, allocationID)
	if err != nil {
		return fmt.Errorf("failed to load allocation %s: %w", allocationID, err)
	}
	if allocation == nil {
		return errors.ErrNotFoundWithID("allocation", allocationID)
	}
	if allocation.Released {
		return nil
	}

	unlock := s.keys.Lock(allocation.SKU + "@" + allocation.LocationCode)
	defer unlock()

	record, err := s.records.FindByKey(ctx, allocation.SKU, allocation.LocationCode)
	if err != nil {
		return fmt.Errorf("failed to load record for allocation %s: %w", allocationID, err)
	}
	if record == nil {
		return errors.ErrNotFoundWithID("inventory record", allocation.SKU+"@"+allocation.LocationCode)
	}

	if err := record.ReleaseAllocation(allocation.Quantity); err != nil {
		return errors.ErrConflict(err.Error())
	}
	if err := s.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	allocation.Released = true
	if err := s.allocations.Save(ctx, allocation); err != nil {
		return fmt.Errorf("failed to mark allocation released: %w", err)
	}

	tx := domain.NewInventoryTransaction(uuid.NewString(), allocation.SKU, allocation.LocationCode,
		domain.TransactionRelease, allocation.Quantity, record.Quantity, record.Quantity,
		"allocation released", allocation.OrderID)
	return s.transactions.Append(ctx, tx)
}

// ConsumeAllocation removes allocated stock from the ledger when a pick
// physically takes it out of the location
func (s *LedgerService) ConsumeAllocation(ctx context.Context, allocationID string, quantity int) error {
	allocation, err := s.allocations.FindByID(ctx, allocationID)
	if err != nil {
		return fmt.Errorf("failed to load allocation %s: %w", allocationID, err)
	}
	if allocation == nil {
		return errors.ErrNotFoundWithID("allocation", allocationID)
	}

	unlock := s.keys.Lock(allocation.SKU + "@" + allocation.LocationCode)
	defer unlock()

	record, err := s.records.FindByKey(ctx, allocation.SKU, allocation.LocationCode)
	if err != nil {
		return fmt.Errorf("failed to load record for allocation %s: %w", allocationID, err)
	}
	if record == nil {
		return errors.ErrNotFoundWithID("inventory record", allocation.SKU+"@"+allocation.LocationCode)
	}

	previous := record.Quantity
	if err := record.ConsumeAllocation(quantity); err != nil {
		return errors.ErrConflict(err.Error())
	}
	if err := s.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	tx := domain.NewInventoryTransaction(uuid.NewString(), allocation.SKU, allocation.LocationCode,
		domain.TransactionPick, -quantity, previous, record.Quantity, "pick", allocation.OrderID)
	return s.transactions.Append(ctx, tx)
}

// HoldInventory moves available stock to on-hold, used for quality
// quarantine pending lot inspection
func (s *LedgerService) HoldInventory(ctx context.Context, sku, locationCode string, quantity int, reason string) error {
	if quantity <= 0 {
		return errors.ErrValidation("hold quantity must be positive")
	}

	unlock := s.keys.Lock(sku + "@" + locationCode)
	defer unlock()

	record, err := s.records.FindByKey(ctx, sku, locationCode)
	if err != nil {
		return fmt.Errorf("failed to load record %s@%s: %w", sku, locationCode, err)
	}
	if record == nil {
		return errors.ErrNotFoundWithID("inventory record", sku+"@"+locationCode)
	}
	if err := record.Hold(quantity); err != nil {
		return errors.ErrConflict(err.Error())
	}
	if err := s.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save record %s@%s: %w", sku, locationCode, err)
	}

	tx := domain.NewInventoryTransaction(uuid.NewString(), sku, locationCode,
		domain.TransactionHold, -quantity, record.Quantity, record.Quantity, reason, "")
	return s.transactions.Append(ctx, tx)
}

// ReleaseHold returns on-hold stock to available
func (s *LedgerService) ReleaseHold(ctx context.Context, sku, locationCode string, quantity int, reason string) error {
	if quantity <= 0 {
		return errors.ErrValidation("hold quantity must be positive")
	}

	unlock := s.keys.Lock(sku + "@" + locationCode)
	defer unlock()

	record, err := s.records.FindByKey(ctx, sku, locationCode)
	if err != nil {
		return fmt.Errorf("failed to load record %s@%s: %w", sku, locationCode, err)
	}
	if record == nil {
		return errors.ErrNotFoundWithID("inventory record", sku+"@"+locationCode)
	}
	if err := record.ReleaseHold(quantity); err != nil {
		return errors.ErrConflict(err.Error())
	}
	if err := s.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save record %s@%s: %w", sku, locationCode, err)
	}

	tx := domain.NewInventoryTransaction(uuid.NewString(), sku, locationCode,
		domain.TransactionHold, quantity, record.Quantity, record.Quantity, reason, "")
	return s.transactions.Append(ctx, tx)
}

// GetAllocationsByOrder returns every allocation made for an order
func (s *LedgerService) GetAllocationsByOrder(ctx context.Context, orderID string) ([]*domain.Allocation, error) {
	return s.allocations.FindByOrderID(ctx, orderID)
}

// CreateLot registers a lot in pending quality status
func (s *LedgerService) CreateLot(ctx context.Context, lotNumber, sku string, quantity int, manufactured, expires time.Time) (*domain.Lot, error) {
	existing, err := s.lots.FindByNumber(ctx, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lot %s: %w", lotNumber, err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("lot %s already exists", lotNumber))
	}

	lot, err := domain.NewLot(lotNumber, sku, quantity, manufactured, expires)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	if err := s.lots.Save(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot %s: %w", lotNumber, err)
	}
	return lot, nil
}

// GetLotsByProduct returns all lots for a SKU
func (s *LedgerService) GetLotsByProduct(ctx context.Context, sku string) ([]*domain.Lot, error) {
	return s.lots.FindBySKU(ctx, sku)
}

// GetExpiringLots returns lots expiring within the next days, soonest expiry
// first (FEFO)
func (s *LedgerService) GetExpiringLots(ctx context.Context, days int) ([]*domain.Lot, error) {
	horizon := s.clock.Now().AddDate(0, 0, days)
	return s.lots.FindExpiringBefore(ctx, horizon)
}

// UpdateLotQuality transitions a lot's quality status
func (s *LedgerService) UpdateLotQuality(ctx context.Context, lotNumber string, status domain.LotQualityStatus) (*domain.Lot, error) {
	lot, err := s.lots.FindByNumber(ctx, lotNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lot %s: %w", lotNumber, err)
	}
	if lot == nil {
		return nil, errors.ErrNotFoundWithID("lot", lotNumber)
	}

	old := lot.QualityStatus
	if err := lot.SetQuality(status); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	if err := s.lots.Save(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to save lot %s: %w", lotNumber, err)
	}

	_ = s.publisher.Publish(ctx, &domain.LotQualityChangedEvent{
		LotNumber: lotNumber,
		SKU:       lot.SKU,
		OldStatus: string(old),
		NewStatus: string(status),
		ChangedAt: s.clock.Now(),
	})
	return lot, nil
}
