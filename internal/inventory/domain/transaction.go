package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType categorises a ledger mutation
type TransactionType string

const (
	TransactionReceipt    TransactionType = "receipt"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionAllocation TransactionType = "allocation"
	TransactionRelease    TransactionType = "release"
	TransactionPick       TransactionType = "pick"
	TransactionHold       TransactionType = "hold"
	TransactionRestock    TransactionType = "restock"
)

// InventoryTransaction is the immutable audit entry appended for every
// ledger mutation
type InventoryTransaction struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TransactionID    string             `bson:"transactionId"`
	SKU              string             `bson:"sku"`
	LocationCode     string             `bson:"locationCode"`
	Type             TransactionType    `bson:"type"`
	Delta            int                `bson:"delta"`
	PreviousQuantity int                `bson:"previousQuantity"`
	NewQuantity      int                `bson:"newQuantity"`
	Reason           string             `bson:"reason"`
	Reference        string             `bson:"reference,omitempty"`
	OccurredAtTime   time.Time          `bson:"occurredAt"`
}

// NewInventoryTransaction creates an audit entry
func NewInventoryTransaction(txID, sku, location string, txType TransactionType, delta, previous, current int, reason, reference string) *InventoryTransaction {
	return &InventoryTransaction{
		TransactionID:    txID,
		SKU:              sku,
		LocationCode:     location,
		Type:             txType,
		Delta:            delta,
		PreviousQuantity: previous,
		NewQuantity:      current,
		Reason:           reason,
		Reference:        reference,
		OccurredAtTime:   time.Now(),
	}
}

// Allocation records which (order, sku) reservation is satisfied from which
// location and quantity. Immutable once created; referenced, not owned, by
// the order and the record it debited.
type Allocation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	AllocationID string             `bson:"allocationId"`
	OrderID      string             `bson:"orderId"`
	SKU          string             `bson:"sku"`
	LocationCode string             `bson:"locationCode"`
	Quantity     int                `bson:"quantity"`
	CreatedAt    time.Time          `bson:"createdAt"`
	Released     bool               `bson:"released"`
}

// NewAllocation creates an allocation entry
func NewAllocation(allocationID, orderID, sku, location string, quantity int) *Allocation {
	return &Allocation{
		AllocationID: allocationID,
		OrderID:      orderID,
		SKU:          sku,
		LocationCode: location,
		Quantity:     quantity,
		CreatedAt:    time.Now(),
	}
}
