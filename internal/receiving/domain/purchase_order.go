package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrPOLineNotFound  = errors.New("purchase order line not found")
	ErrPOClosed        = errors.New("purchase order is closed")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrReceiptFinished = errors.New("receipt is already finished")
	ErrTaskNotPending  = errors.New("task is not pending")
)

// POStatus is the purchase order state machine
type POStatus string

const (
	POStatusOpen              POStatus = "open"
	POStatusPartiallyReceived POStatus = "partially_received"
	POStatusReceived          POStatus = "received"
	POStatusCancelled         POStatus = "cancelled"
)

// Supplier identifies the sending party
type Supplier struct {
	SupplierID string `bson:"supplierId"`
	Name       string `bson:"name"`
}

// POLine is one expected line on a purchase order
type POLine struct {
	SKU              string  `bson:"sku"`
	Description      string  `bson:"description,omitempty"`
	OrderedQuantity  int     `bson:"orderedQuantity"`
	ReceivedQuantity int     `bson:"receivedQuantity"`
	UnitCost         float64 `bson:"unitCost"`
}

// PurchaseOrder is the inbound commitment from a supplier
type PurchaseOrder struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PONumber     string             `bson:"poNumber"`
	Supplier     Supplier           `bson:"supplier"`
	Lines        []POLine           `bson:"lines"`
	Status       POStatus           `bson:"status"`
	ExpectedDate time.Time          `bson:"expectedDate"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// NewPurchaseOrder creates an open purchase order
func NewPurchaseOrder(poNumber string, supplier Supplier, lines []POLine, expected time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, errors.New("po number is required")
	}
	if len(lines) == 0 {
		return nil, errors.New("purchase order must have at least one line")
	}
	for _, line := range lines {
		if line.OrderedQuantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	return &PurchaseOrder{
		PONumber:     poNumber,
		Supplier:     supplier,
		Lines:        lines,
		Status:       POStatusOpen,
		ExpectedDate: expected,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RecordReceipt rolls received quantity into a line and advances the
// status once every line is fully received. Over-receipt is allowed; the
// discrepancy is tracked on the receipt, not here.
func (po *PurchaseOrder) RecordReceipt(sku string, quantity int) error {
	if po.Status == POStatusCancelled {
		return ErrPOClosed
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	line := po.line(sku)
	if line == nil {
		return ErrPOLineNotFound
	}
	line.ReceivedQuantity += quantity
	po.UpdatedAt = time.Now()

	fully := true
	for _, l := range po.Lines {
		if l.ReceivedQuantity < l.OrderedQuantity {
			fully = false
			break
		}
	}
	if fully {
		po.Status = POStatusReceived
	} else {
		po.Status = POStatusPartiallyReceived
	}
	return nil
}

// Cancel closes an open purchase order
func (po *PurchaseOrder) Cancel() error {
	if po.Status == POStatusReceived || po.Status == POStatusCancelled {
		return ErrInvalidStatus
	}
	po.Status = POStatusCancelled
	po.UpdatedAt = time.Now()
	return nil
}

func (po *PurchaseOrder) line(sku string) *POLine {
	for i := range po.Lines {
		if po.Lines[i].SKU == sku {
			return &po.Lines[i]
		}
	}
	return nil
}

// Line returns the line for a SKU, or nil
func (po *PurchaseOrder) Line(sku string) *POLine {
	return po.line(sku)
}
