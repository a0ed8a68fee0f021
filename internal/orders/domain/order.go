package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrLineNotFound        = errors.New("order line not found")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrNoLines             = errors.New("order must have at least one line")
)

// OrderStatus is the outbound order state machine. Terminal states are
// shipped, delivered, validation_failed and cancelled.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusValidated          OrderStatus = "validated"
	OrderStatusValidationFailed   OrderStatus = "validation_failed"
	OrderStatusAllocated          OrderStatus = "allocated"
	OrderStatusPartiallyAllocated OrderStatus = "partially_allocated"
	OrderStatusReleased           OrderStatus = "released"
	OrderStatusPicking            OrderStatus = "picking"
	OrderStatusPicked             OrderStatus = "picked"
	OrderStatusPacked             OrderStatus = "packed"
	OrderStatusShipped            OrderStatus = "shipped"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusValidationFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// Priority orders waves and carrier cutoffs
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns a sortable rank, higher is more urgent
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Customer is the order's destination party
type Customer struct {
	CustomerID string `bson:"customerId"`
	Name       string `bson:"name"`
	Street     string `bson:"street"`
	City       string `bson:"city"`
	State      string `bson:"state"`
	PostalCode string `bson:"postalCode"`
	Country    string `bson:"country"`
}

// Line is one order line. Quantities advance independently as the line moves
// through allocation, picking and packing.
type Line struct {
	SKU               string   `bson:"sku"`
	Description       string   `bson:"description,omitempty"`
	UnitPrice         float64  `bson:"unitPrice"`
	OrderedQuantity   int      `bson:"orderedQuantity"`
	AllocatedQuantity int      `bson:"allocatedQuantity"`
	PickedQuantity    int      `bson:"pickedQuantity"`
	PackedQuantity    int      `bson:"packedQuantity"`
	AllocationIDs     []string `bson:"allocationIds,omitempty"`
}

// ValidationIssue is one structured reason an order failed validation
type ValidationIssue struct {
	SKU     string `bson:"sku,omitempty" json:"sku,omitempty"`
	Code    string `bson:"code" json:"code"`
	Message string `bson:"message" json:"message"`
}

// Issue codes
const (
	IssueInsufficientStock = "insufficient_stock"
	IssueRequiredDatePast  = "required_date_past"
	IssueUnknownProduct    = "unknown_product"
)

// Order is the aggregate root of the outbound pipeline
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	OrderNumber      string             `bson:"orderNumber"`
	Customer         Customer           `bson:"customer"`
	Priority         Priority           `bson:"priority"`
	Carrier          string             `bson:"carrier,omitempty"`
	Lines            []Line             `bson:"lines"`
	Status           OrderStatus        `bson:"status"`
	TotalValue       float64            `bson:"totalValue"`
	ValidationIssues []ValidationIssue  `bson:"validationIssues,omitempty"`
	WaveID           string             `bson:"waveId,omitempty"`
	OrderDate        time.Time          `bson:"orderDate"`
	RequiredBy       *time.Time         `bson:"requiredBy,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

// NewOrder creates a pending order and computes its total value
func NewOrder(orderNumber string, customer Customer, priority Priority, lines []Line, requiredBy *time.Time) (*Order, error) {
	if orderNumber == "" {
		return nil, errors.New("order number is required")
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for _, line := range lines {
		if line.OrderedQuantity <= 0 {
			return nil, errors.New("line quantity must be positive")
		}
	}
	if priority == "" {
		priority = PriorityNormal
	}

	now := time.Now()
	order := &Order{
		OrderNumber: orderNumber,
		Customer:    customer,
		Priority:    priority,
		Lines:       lines,
		Status:      OrderStatusPending,
		OrderDate:   now,
		RequiredBy:  requiredBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, line := range lines {
		order.TotalValue += line.UnitPrice * float64(line.OrderedQuantity)
	}
	return order, nil
}

// MarkValidated moves a pending order to validated
func (o *Order) MarkValidated() error {
	if o.Status != OrderStatusPending {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusValidated
	o.ValidationIssues = nil
	o.UpdatedAt = time.Now()
	return nil
}

// MarkValidationFailed records the issues and terminates the order
func (o *Order) MarkValidationFailed(issues []ValidationIssue) error {
	if o.Status != OrderStatusPending {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusValidationFailed
	o.ValidationIssues = issues
	o.UpdatedAt = time.Now()
	return nil
}

// ApplyAllocation records allocated quantity against a line
func (o *Order) ApplyAllocation(sku string, quantity int, allocationIDs []string) error {
	line := o.line(sku)
	if line == nil {
		return ErrLineNotFound
	}
	line.AllocatedQuantity += quantity
	line.AllocationIDs = append(line.AllocationIDs, allocationIDs...)
	o.UpdatedAt = time.Now()
	return nil
}

// FinishAllocation sets the post-allocation status: allocated only when
// every line's allocated quantity equals its ordered quantity
func (o *Order) FinishAllocation() error {
	if o.Status != OrderStatusValidated {
		return ErrInvalidTransition
	}
	if o.FullyAllocated() {
		o.Status = OrderStatusAllocated
	} else {
		o.Status = OrderStatusPartiallyAllocated
	}
	o.UpdatedAt = time.Now()
	return nil
}

// FullyAllocated reports whether every line is fully covered
func (o *Order) FullyAllocated() bool {
	for _, line := range o.Lines {
		if line.AllocatedQuantity < line.OrderedQuantity {
			return false
		}
	}
	return true
}

// Release stamps the order into a wave
func (o *Order) Release(waveID string) error {
	if o.Status != OrderStatusAllocated {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusReleased
	o.WaveID = waveID
	o.UpdatedAt = time.Now()
	return nil
}

// ReturnToAllocated pulls a released order back out of a cancelled wave
func (o *Order) ReturnToAllocated() error {
	if o.Status != OrderStatusReleased {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusAllocated
	o.WaveID = ""
	o.UpdatedAt = time.Now()
	return nil
}

// StartPicking moves a released order to picking
func (o *Order) StartPicking() error {
	if o.Status != OrderStatusReleased {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusPicking
	o.UpdatedAt = time.Now()
	return nil
}

// RecordPick rolls picked quantity into a line. When every line's picked
// quantity meets its allocated quantity the order becomes picked.
func (o *Order) RecordPick(sku string, quantity int) error {
	if o.Status != OrderStatusPicking && o.Status != OrderStatusReleased {
		return ErrInvalidTransition
	}
	line := o.line(sku)
	if line == nil {
		return ErrLineNotFound
	}
	if o.Status == OrderStatusReleased {
		o.Status = OrderStatusPicking
	}
	line.PickedQuantity += quantity
	o.UpdatedAt = time.Now()

	if o.fullyPicked() {
		o.Status = OrderStatusPicked
	}
	return nil
}

func (o *Order) fullyPicked() bool {
	for _, line := range o.Lines {
		if line.PickedQuantity < line.AllocatedQuantity {
			return false
		}
	}
	return true
}

// RecordPack rolls packed quantity into a line
func (o *Order) RecordPack(sku string, quantity int) error {
	if o.Status != OrderStatusPicked {
		return ErrInvalidTransition
	}
	line := o.line(sku)
	if line == nil {
		return ErrLineNotFound
	}
	line.PackedQuantity += quantity
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPacked moves a picked order to packed
func (o *Order) MarkPacked() error {
	if o.Status != OrderStatusPicked {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusPacked
	o.UpdatedAt = time.Now()
	return nil
}

// MarkShipped moves a packed order to shipped (terminal for the pipeline)
func (o *Order) MarkShipped() error {
	if o.Status != OrderStatusPacked {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered records final delivery
func (o *Order) MarkDelivered() error {
	if o.Status != OrderStatusShipped {
		return ErrInvalidTransition
	}
	o.Status = OrderStatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel terminates the order. Allowed until picking has started; consumers
// check status before acting so cancelled work is dropped at the next
// hand-off.
func (o *Order) Cancel() error {
	switch o.Status {
	case OrderStatusPending, OrderStatusValidated, OrderStatusAllocated,
		OrderStatusPartiallyAllocated, OrderStatusReleased:
		o.Status = OrderStatusCancelled
		o.UpdatedAt = time.Now()
		return nil
	}
	return ErrOrderNotCancellable
}

// TotalUnits returns the ordered unit count across lines
func (o *Order) TotalUnits() int {
	total := 0
	for _, line := range o.Lines {
		total += line.OrderedQuantity
	}
	return total
}

// DistinctSKUs returns the number of distinct SKUs on the order
func (o *Order) DistinctSKUs() int {
	return len(o.Lines)
}

func (o *Order) line(sku string) *Line {
	for i := range o.Lines {
		if o.Lines[i].SKU == sku {
			return &o.Lines[i]
		}
	}
	return nil
}

// Line returns the line for a SKU, or nil
func (o *Order) Line(sku string) *Line {
	return o.line(sku)
}
