package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wms-platform/fulfillment/internal/inventory/domain"
)

// RecordRepository is an in-memory RecordRepository
type RecordRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.InventoryRecord
}

// NewRecordRepository creates an empty repository
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{records: make(map[string]*domain.InventoryRecord)}
}

func key(sku, location string) string { return sku + "@" + location }

func (r *RecordRepository) Save(ctx context.Context, record *domain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records[record.Key()] = &copied
	return nil
}

func (r *RecordRepository) FindByKey(ctx context.Context, sku, locationCode string) (*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[key(sku, locationCode)]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, nil
}

func (r *RecordRepository) FindBySKU(ctx context.Context, sku string) ([]*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.InventoryRecord
	for _, rec := range r.records {
		if rec.SKU == sku {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *RecordRepository) FindByLocation(ctx context.Context, locationCode string) ([]*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.InventoryRecord
	for _, rec := range r.records {
		if rec.LocationCode == locationCode {
			copied := *rec
			out = append(out, &copied)
		}
	}
	return out, nil
}

// TransactionRepository is an in-memory append-only transaction log
type TransactionRepository struct {
	mu  sync.RWMutex
	txs []*domain.InventoryTransaction
}

// NewTransactionRepository creates an empty log
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

func (r *TransactionRepository) Append(ctx context.Context, tx *domain.InventoryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tx
	r.txs = append(r.txs, &copied)
	return nil
}

func (r *TransactionRepository) FindBySKU(ctx context.Context, sku string, limit int) ([]*domain.InventoryTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.InventoryTransaction
	for i := len(r.txs) - 1; i >= 0; i-- {
		if r.txs[i].SKU == sku {
			copied := *r.txs[i]
			out = append(out, &copied)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// All returns every appended transaction, oldest first
func (r *TransactionRepository) All() []*domain.InventoryTransaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.InventoryTransaction, len(r.txs))
	copy(out, r.txs)
	return out
}

// AllocationRepository is an in-memory AllocationRepository
type AllocationRepository struct {
	mu          sync.RWMutex
	allocations map[string]*domain.Allocation
}

// NewAllocationRepository creates an empty repository
func NewAllocationRepository() *AllocationRepository {
	return &AllocationRepository{allocations: make(map[string]*domain.Allocation)}
}

func (r *AllocationRepository) Save(ctx context.Context, allocation *domain.Allocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *allocation
	r.allocations[allocation.AllocationID] = &copied
	return nil
}

func (r *AllocationRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.Allocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Allocation
	for _, a := range r.allocations {
		if a.OrderID == orderID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *AllocationRepository) FindByID(ctx context.Context, allocationID string) (*domain.Allocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.allocations[allocationID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

// LotRepository is an in-memory LotRepository
type LotRepository struct {
	mu   sync.RWMutex
	lots map[string]*domain.Lot
}

// NewLotRepository creates an empty repository
func NewLotRepository() *LotRepository {
	return &LotRepository{lots: make(map[string]*domain.Lot)}
}

func (r *LotRepository) Save(ctx context.Context, lot *domain.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *lot
	r.lots[lot.LotNumber] = &copied
	return nil
}

func (r *LotRepository) FindByNumber(ctx context.Context, lotNumber string) (*domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.lots[lotNumber]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, nil
}

func (r *LotRepository) FindBySKU(ctx context.Context, sku string) ([]*domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Lot
	for _, l := range r.lots {
		if l.SKU == sku {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *LotRepository) FindExpiringBefore(ctx context.Context, horizon time.Time) ([]*domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Lot
	for _, l := range r.lots {
		if l.ExpiresWithin(horizon) {
			copied := *l
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}
