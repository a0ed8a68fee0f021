package domain

import "time"

// InventoryAdjustedEvent is published after every quantity adjustment
type InventoryAdjustedEvent struct {
	SKU              string    `json:"sku"`
	LocationCode     string    `json:"locationCode"`
	Delta            int       `json:"delta"`
	PreviousQuantity int       `json:"previousQuantity"`
	NewQuantity      int       `json:"newQuantity"`
	Reason           string    `json:"reason"`
	AdjustedAt       time.Time `json:"adjustedAt"`
}

func (e *InventoryAdjustedEvent) EventType() string     { return "fulfillment.inventory.adjusted" }
func (e *InventoryAdjustedEvent) OccurredAt() time.Time { return e.AdjustedAt }

// InventoryAllocatedEvent is published for each record debited by an
// allocation request
type InventoryAllocatedEvent struct {
	AllocationID string    `json:"allocationId"`
	OrderID      string    `json:"orderId"`
	SKU          string    `json:"sku"`
	LocationCode string    `json:"locationCode"`
	Quantity     int       `json:"quantity"`
	AllocatedAt  time.Time `json:"allocatedAt"`
}

func (e *InventoryAllocatedEvent) EventType() string     { return "fulfillment.inventory.allocated" }
func (e *InventoryAllocatedEvent) OccurredAt() time.Time { return e.AllocatedAt }

// AllocationShortfallEvent is published when a request could not be fully
// satisfied. Partial allocations already made stand.
type AllocationShortfallEvent struct {
	OrderID    string    `json:"orderId"`
	SKU        string    `json:"sku"`
	Requested  int       `json:"requested"`
	Allocated  int       `json:"allocated"`
	OccurredOn time.Time `json:"occurredOn"`
}

func (e *AllocationShortfallEvent) EventType() string     { return "fulfillment.inventory.shortfall" }
func (e *AllocationShortfallEvent) OccurredAt() time.Time { return e.OccurredOn }

// LotQualityChangedEvent is published on lot quality transitions
type LotQualityChangedEvent struct {
	LotNumber string    `json:"lotNumber"`
	SKU       string    `json:"sku"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	ChangedAt time.Time `json:"changedAt"`
}

func (e *LotQualityChangedEvent) EventType() string     { return "fulfillment.inventory.lot-quality-changed" }
func (e *LotQualityChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
