package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PutAwayStatus is the put-away task state machine
type PutAwayStatus string

const (
	PutAwayPending    PutAwayStatus = "pending"
	PutAwayAssigned   PutAwayStatus = "assigned"
	PutAwayInProgress PutAwayStatus = "in_progress"
	PutAwayCompleted  PutAwayStatus = "completed"
)

// PutAwayTask moves received stock from staging to its storage slot
type PutAwayTask struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	TaskID       string             `bson:"taskId"`
	SKU          string             `bson:"sku"`
	Quantity     int                `bson:"quantity"`
	FromLocation string             `bson:"fromLocation"`
	ToLocation   string             `bson:"toLocation"`
	Status       PutAwayStatus      `bson:"status"`
	AssignedTo   string             `bson:"assignedTo,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty"`
}

// NewPutAwayTask creates a pending task
func NewPutAwayTask(taskID, sku string, quantity int, from, to string, now time.Time) (*PutAwayTask, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &PutAwayTask{
		TaskID:       taskID,
		SKU:          sku,
		Quantity:     quantity,
		FromLocation: from,
		ToLocation:   to,
		Status:       PutAwayPending,
		CreatedAt:    now,
	}, nil
}

// Assign hands the task to a worker
func (t *PutAwayTask) Assign(staffID string) error {
	if t.Status != PutAwayPending {
		return ErrInvalidStatus
	}
	t.Status = PutAwayAssigned
	t.AssignedTo = staffID
	return nil
}

// Start begins execution
func (t *PutAwayTask) Start() error {
	if t.Status != PutAwayAssigned && t.Status != PutAwayPending {
		return ErrInvalidStatus
	}
	t.Status = PutAwayInProgress
	return nil
}

// Complete finishes the task
func (t *PutAwayTask) Complete(now time.Time) error {
	if t.Status == PutAwayCompleted {
		return ErrInvalidStatus
	}
	t.Status = PutAwayCompleted
	t.CompletedAt = &now
	return nil
}
