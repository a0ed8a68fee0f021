package domain

import (
	"context"
	"time"
)

// RecordRepository persists inventory records
type RecordRepository interface {
	Save(ctx context.Context, record *InventoryRecord) error
	FindByKey(ctx context.Context, sku, locationCode string) (*InventoryRecord, error)
	// FindBySKU returns all records for a SKU ordered oldest-created-first
	FindBySKU(ctx context.Context, sku string) ([]*InventoryRecord, error)
	FindByLocation(ctx context.Context, locationCode string) ([]*InventoryRecord, error)
}

// TransactionRepository appends and reads the immutable audit trail
type TransactionRepository interface {
	Append(ctx context.Context, tx *InventoryTransaction) error
	FindBySKU(ctx context.Context, sku string, limit int) ([]*InventoryTransaction, error)
}

// AllocationRepository persists allocation entries
type AllocationRepository interface {
	Save(ctx context.Context, allocation *Allocation) error
	FindByOrderID(ctx context.Context, orderID string) ([]*Allocation, error)
	FindByID(ctx context.Context, allocationID string) (*Allocation, error)
}

// LotRepository persists lots
type LotRepository interface {
	Save(ctx context.Context, lot *Lot) error
	FindByNumber(ctx context.Context, lotNumber string) (*Lot, error)
	FindBySKU(ctx context.Context, sku string) ([]*Lot, error)
	// FindExpiringBefore returns lots expiring before the horizon, soonest
	// expiry first (FEFO)
	FindExpiringBefore(ctx context.Context, horizon time.Time) ([]*Lot, error)
}
