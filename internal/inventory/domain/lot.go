package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrLotNotFound          = errors.New("lot not found")
	ErrInvalidLotTransition = errors.New("invalid lot quality transition")
)

// LotQualityStatus is the quality disposition of a lot
type LotQualityStatus string

const (
	LotQualityPending    LotQualityStatus = "pending"
	LotQualityApproved   LotQualityStatus = "approved"
	LotQualityRejected   LotQualityStatus = "rejected"
	LotQualityQuarantine LotQualityStatus = "quarantine"
)

// Lot tracks a manufacturing batch for lot-tracked products
type Lot struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	LotNumber       string             `bson:"lotNumber"`
	SKU             string             `bson:"sku"`
	Quantity        int                `bson:"quantity"`
	ManufacturedAt  time.Time          `bson:"manufacturedAt"`
	ExpiresAt       time.Time          `bson:"expiresAt"`
	QualityStatus   LotQualityStatus   `bson:"qualityStatus"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

// NewLot creates a lot in pending quality status
func NewLot(lotNumber, sku string, quantity int, manufactured, expires time.Time) (*Lot, error) {
	if lotNumber == "" {
		return nil, errors.New("lot number is required")
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Lot{
		LotNumber:      lotNumber,
		SKU:            sku,
		Quantity:       quantity,
		ManufacturedAt: manufactured,
		ExpiresAt:      expires,
		QualityStatus:  LotQualityPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// SetQuality transitions the lot's quality status. Pending lots may move to
// any disposition; quarantined lots may be approved or rejected; approved
// and rejected are terminal.
func (l *Lot) SetQuality(status LotQualityStatus) error {
	switch l.QualityStatus {
	case LotQualityPending:
	case LotQualityQuarantine:
		if status != LotQualityApproved && status != LotQualityRejected {
			return ErrInvalidLotTransition
		}
	default:
		return ErrInvalidLotTransition
	}
	l.QualityStatus = status
	l.UpdatedAt = time.Now()
	return nil
}

// ExpiresWithin reports whether the lot expires inside the window ending at
// horizon
func (l *Lot) ExpiresWithin(horizon time.Time) bool {
	return !l.ExpiresAt.After(horizon)
}
