package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInsufficientAvailable = errors.New("insufficient available quantity")
	ErrInsufficientAllocated = errors.New("insufficient allocated quantity")
	ErrInsufficientHold      = errors.New("insufficient on-hold quantity")
	ErrRecordNotFound        = errors.New("inventory record not found")
)

// InventoryRecord tracks stock for one (sku, location) pair. Records are
// created on first receipt or adjustment and never deleted; zero-quantity
// records persist as the history anchor for their transactions.
//
// Invariant: Available == Quantity - Allocated - OnHold, all fields >= 0.
type InventoryRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	SKU          string             `bson:"sku"`
	LocationCode string             `bson:"locationCode"`
	Quantity     int                `bson:"quantity"`
	Allocated    int                `bson:"allocated"`
	OnHold       int                `bson:"onHold"`
	Available    int                `bson:"available"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// NewInventoryRecord creates a record with an opening quantity
func NewInventoryRecord(sku, locationCode string, quantity int) (*InventoryRecord, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &InventoryRecord{
		SKU:          sku,
		LocationCode: locationCode,
		Quantity:     quantity,
		Available:    quantity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Adjust applies a signed delta to the on-hand quantity. A negative delta
// that would drive quantity below zero is clamped to zero, never negative.
// Returns the previous and new quantity for the transaction record.
func (r *InventoryRecord) Adjust(delta int) (previous, current int) {
	previous = r.Quantity

	r.Quantity += delta
	if r.Quantity < 0 {
		r.Quantity = 0
	}
	r.rebalance()
	r.UpdatedAt = time.Now()

	return previous, r.Quantity
}

// rebalance restores the availability invariant after a quantity change,
// shedding holds before allocations when on-hand stock no longer covers them
func (r *InventoryRecord) rebalance() {
	if r.Allocated+r.OnHold > r.Quantity {
		over := r.Allocated + r.OnHold - r.Quantity
		shed := min(over, r.OnHold)
		r.OnHold -= shed
		over -= shed
		r.Allocated -= over
	}
	r.Available = r.Quantity - r.Allocated - r.OnHold
}

// Allocate moves quantity from available to allocated
func (r *InventoryRecord) Allocate(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Available < quantity {
		return ErrInsufficientAvailable
	}
	r.Allocated += quantity
	r.Available -= quantity
	r.UpdatedAt = time.Now()
	return nil
}

// ReleaseAllocation returns allocated quantity to available
func (r *InventoryRecord) ReleaseAllocation(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Allocated < quantity {
		return ErrInsufficientAllocated
	}
	r.Allocated -= quantity
	r.Available += quantity
	r.UpdatedAt = time.Now()
	return nil
}

// ConsumeAllocation removes allocated stock from the record entirely, as
// happens when a pick physically takes units away
func (r *InventoryRecord) ConsumeAllocation(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Allocated < quantity {
		return ErrInsufficientAllocated
	}
	r.Allocated -= quantity
	r.Quantity -= quantity
	r.UpdatedAt = time.Now()
	return nil
}

// Hold moves quantity from available to on-hold (quality holds)
func (r *InventoryRecord) Hold(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Available < quantity {
		return ErrInsufficientAvailable
	}
	r.OnHold += quantity
	r.Available -= quantity
	r.UpdatedAt = time.Now()
	return nil
}

// ReleaseHold returns on-hold quantity to available
func (r *InventoryRecord) ReleaseHold(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.OnHold < quantity {
		return ErrInsufficientHold
	}
	r.OnHold -= quantity
	r.Available += quantity
	r.UpdatedAt = time.Now()
	return nil
}

// Key returns the (sku, location) identity of the record
func (r *InventoryRecord) Key() string {
	return r.SKU + "@" + r.LocationCode
}
