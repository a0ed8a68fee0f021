package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReceiptStatus is the per-receipt state machine
type ReceiptStatus string

const (
	ReceiptStatusInProgress  ReceiptStatus = "in_progress"
	ReceiptStatusCompleted   ReceiptStatus = "completed"
	ReceiptStatusDiscrepancy ReceiptStatus = "discrepancy"
)

// Quality is the inspection outcome for a received line
type Quality string

const (
	QualityAccepted   Quality = "accepted"
	QualityDamaged    Quality = "damaged"
	QualityQuarantine Quality = "quarantine"
)

// ReceiptLine records actual vs expected for one SKU
type ReceiptLine struct {
	SKU              string  `bson:"sku"`
	ExpectedQuantity int     `bson:"expectedQuantity"`
	ReceivedQuantity int     `bson:"receivedQuantity"`
	Quality          Quality `bson:"quality"`
	LotNumber        string  `bson:"lotNumber,omitempty"`
}

// HasDiscrepancy reports whether actual differs from expected, over or short
func (l ReceiptLine) HasDiscrepancy() bool {
	return l.ReceivedQuantity != l.ExpectedQuantity
}

// Receipt tracks one receiving session against an ASN
type Receipt struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ReceiptNumber string             `bson:"receiptNumber"`
	ASNNumber     string             `bson:"asnNumber"`
	PONumber      string             `bson:"poNumber"`
	Lines         []ReceiptLine      `bson:"lines"`
	Status        ReceiptStatus      `bson:"status"`
	StartedAt     time.Time          `bson:"startedAt"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty"`
}

// NewReceipt opens a receiving session
func NewReceipt(receiptNumber, asnNumber, poNumber string) (*Receipt, error) {
	if receiptNumber == "" {
		return nil, errors.New("receipt number is required")
	}
	return &Receipt{
		ReceiptNumber: receiptNumber,
		ASNNumber:     asnNumber,
		PONumber:      poNumber,
		Status:        ReceiptStatusInProgress,
		StartedAt:     time.Now(),
	}, nil
}

// RecordLine appends the inspection result for one SKU
func (r *Receipt) RecordLine(line ReceiptLine) error {
	if r.Status != ReceiptStatusInProgress {
		return ErrReceiptFinished
	}
	r.Lines = append(r.Lines, line)
	return nil
}

// Complete finishes the session. Any line with a quantity discrepancy moves
// the receipt to discrepancy instead of completed.
func (r *Receipt) Complete(now time.Time) error {
	if r.Status != ReceiptStatusInProgress {
		return ErrReceiptFinished
	}
	r.Status = ReceiptStatusCompleted
	for _, line := range r.Lines {
		if line.HasDiscrepancy() {
			r.Status = ReceiptStatusDiscrepancy
			break
		}
	}
	r.CompletedAt = &now
	return nil
}

// ReceivingTaskStatus tracks one expected line through inspection
type ReceivingTaskStatus string

const (
	ReceivingTaskPending   ReceivingTaskStatus = "pending"
	ReceivingTaskCompleted ReceivingTaskStatus = "completed"
)

// ReceivingTask is spawned per expected ASN line when receiving starts
type ReceivingTask struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	TaskID           string              `bson:"taskId"`
	ReceiptNumber    string              `bson:"receiptNumber"`
	SKU              string              `bson:"sku"`
	ExpectedQuantity int                 `bson:"expectedQuantity"`
	Status           ReceivingTaskStatus `bson:"status"`
	CreatedAt        time.Time           `bson:"createdAt"`
	CompletedAt      *time.Time          `bson:"completedAt,omitempty"`
}

// Complete marks the task done
func (t *ReceivingTask) Complete(now time.Time) error {
	if t.Status != ReceivingTaskPending {
		return ErrTaskNotPending
	}
	t.Status = ReceivingTaskCompleted
	t.CompletedAt = &now
	return nil
}

// DiscrepancyType classifies over vs short receipt
type DiscrepancyType string

const (
	DiscrepancyShortage DiscrepancyType = "shortage"
	DiscrepancyOverage  DiscrepancyType = "overage"
)

// DiscrepancyStatus tracks the investigation
type DiscrepancyStatus string

const (
	DiscrepancyOpen     DiscrepancyStatus = "open"
	DiscrepancyResolved DiscrepancyStatus = "resolved"
)

// DiscrepancyReport opens an investigation for a quantity mismatch.
// Non-fatal: receiving continues while the report is worked separately.
type DiscrepancyReport struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ReportID      string             `bson:"reportId"`
	ReceiptNumber string             `bson:"receiptNumber"`
	SKU           string             `bson:"sku"`
	Expected      int                `bson:"expected"`
	Actual        int                `bson:"actual"`
	Type          DiscrepancyType    `bson:"type"`
	Status        DiscrepancyStatus  `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// NewDiscrepancyReport classifies and opens a report
func NewDiscrepancyReport(reportID, receiptNumber, sku string, expected, actual int, now time.Time) *DiscrepancyReport {
	kind := DiscrepancyShortage
	if actual > expected {
		kind = DiscrepancyOverage
	}
	return &DiscrepancyReport{
		ReportID:      reportID,
		ReceiptNumber: receiptNumber,
		SKU:           sku,
		Expected:      expected,
		Actual:        actual,
		Type:          kind,
		Status:        DiscrepancyOpen,
		CreatedAt:     now,
	}
}
