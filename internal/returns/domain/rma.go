package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrInvalidTransition = errors.New("invalid rma status transition")
	ErrWindowExpired     = errors.New("return window has expired")
	ErrLineNotFound      = errors.New("rma line not found")
)

// RMAStatus is the return authorization state machine
type RMAStatus string

const (
	RMAStatusAuthorized RMAStatus = "authorized"
	RMAStatusLabelSent  RMAStatus = "label_sent"
	RMAStatusReceived   RMAStatus = "received"
	RMAStatusCompleted  RMAStatus = "completed"
	RMAStatusRejected   RMAStatus = "rejected"
)

// ReturnMethod is how the customer sends the goods back
type ReturnMethod string

const (
	MethodMail          ReturnMethod = "mail"
	MethodCarrierPickup ReturnMethod = "carrier_pickup"
	MethodDropOff       ReturnMethod = "drop_off"
)

// Ships reports whether the method needs a return shipping label
func (m ReturnMethod) Ships() bool {
	return m == MethodMail || m == MethodCarrierPickup
}

// Condition is the state of a returned item
type Condition string

const (
	ConditionNew       Condition = "new"
	ConditionLikeNew   Condition = "like_new"
	ConditionUsed      Condition = "used"
	ConditionDamaged   Condition = "damaged"
	ConditionDefective Condition = "defective"
)

// RefundMultiplier returns the refund fraction for a condition. Used items
// carry a 20% restocking fee; damaged goods refund half; defective goods
// refund in full. Unrecognized conditions refund nothing.
func RefundMultiplier(condition Condition) decimal.Decimal {
	switch condition {
	case ConditionNew, ConditionLikeNew, ConditionDefective:
		return decimal.NewFromInt(1)
	case ConditionUsed:
		return decimal.NewFromFloat(0.8)
	case ConditionDamaged:
		return decimal.NewFromFloat(0.5)
	}
	return decimal.Zero
}

// RestockAllowed reports whether goods in a condition may go back on the
// shelf. Damaged and defective goods never restock; otherwise the original
// authorization flag decides.
func RestockAllowed(condition Condition, authorizedRestock bool) bool {
	switch condition {
	case ConditionNew, ConditionLikeNew, ConditionUsed:
		return authorizedRestock
	}
	return false
}

// RMALine is one authorized return item
type RMALine struct {
	SKU                 string    `bson:"sku"`
	Quantity            int       `bson:"quantity"`
	UnitPrice           float64   `bson:"unitPrice"`
	AuthorizedCondition Condition `bson:"authorizedCondition"`
	Restockable         bool      `bson:"restockable"`
	ExpectedRefund      float64   `bson:"expectedRefund"`
}

// ReceivedLine is the inspection outcome for one returned item
type ReceivedLine struct {
	SKU        string    `bson:"sku"`
	Quantity   int       `bson:"quantity"`
	Condition  Condition `bson:"condition"`
	Refund     float64   `bson:"refund"`
	Restocked  bool      `bson:"restocked"`
	Recognized bool      `bson:"recognized"`
}

// RMA is a return merchandise authorization
type RMA struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	RMANumber   string             `bson:"rmaNumber"`
	OrderNumber string             `bson:"orderNumber"`
	CustomerID  string             `bson:"customerId"`
	Method      ReturnMethod       `bson:"method"`
	Lines       []RMALine          `bson:"lines"`
	Status      RMAStatus          `bson:"status"`
	ExpiresAt   time.Time          `bson:"expiresAt"`
	LabelPath   string             `bson:"labelPath,omitempty"`
	Received    []ReceivedLine     `bson:"received,omitempty"`
	TotalRefund float64            `bson:"totalRefund"`
	CreatedAt   time.Time          `bson:"createdAt"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty"`
}

// NewRMA authorizes a return that expires at the end of the return window
func NewRMA(rmaNumber, orderNumber, customerID string, method ReturnMethod, lines []RMALine, expiresAt time.Time) (*RMA, error) {
	if rmaNumber == "" {
		return nil, errors.New("rma number is required")
	}
	if len(lines) == 0 {
		return nil, errors.New("rma requires at least one line")
	}
	return &RMA{
		RMANumber:   rmaNumber,
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Method:      method,
		Lines:       lines,
		Status:      RMAStatusAuthorized,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}, nil
}

// MarkLabelSent records the generated return label
func (r *RMA) MarkLabelSent(labelPath string) error {
	if r.Status != RMAStatusAuthorized {
		return ErrInvalidTransition
	}
	r.Status = RMAStatusLabelSent
	r.LabelPath = labelPath
	return nil
}

// MarkReceived records physical arrival of the goods. Arrivals after the
// return window reject the RMA.
func (r *RMA) MarkReceived(now time.Time) error {
	if r.Status != RMAStatusAuthorized && r.Status != RMAStatusLabelSent {
		return ErrInvalidTransition
	}
	if now.After(r.ExpiresAt) {
		r.Status = RMAStatusRejected
		return ErrWindowExpired
	}
	r.Status = RMAStatusReceived
	return nil
}

// Complete records the inspection outcomes and the total refund
func (r *RMA) Complete(received []ReceivedLine, totalRefund float64, now time.Time) error {
	if r.Status != RMAStatusReceived {
		return ErrInvalidTransition
	}
	r.Status = RMAStatusCompleted
	r.Received = received
	r.TotalRefund = totalRefund
	r.CompletedAt = &now
	return nil
}

// Line returns the authorized line for a SKU, or nil
func (r *RMA) Line(sku string) *RMALine {
	for i := range r.Lines {
		if r.Lines[i].SKU == sku {
			return &r.Lines[i]
		}
	}
	return nil
}
