package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrInvalidTransition = errors.New("invalid pick task status transition")
	ErrOverPick          = errors.New("picked quantity exceeds required quantity")
)

// PickTaskStatus is the pick task state machine
type PickTaskStatus string

const (
	PickTaskStatusPending    PickTaskStatus = "pending"
	PickTaskStatusAssigned   PickTaskStatus = "assigned"
	PickTaskStatusInProgress PickTaskStatus = "in_progress"
	PickTaskStatusCompleted  PickTaskStatus = "completed"
	PickTaskStatusException  PickTaskStatus = "exception"
)

// PickTask is one unit of pick work, expanded from a single allocation row.
// The pick sequence is assigned by the path optimizer and orders the task
// within its wave.
type PickTask struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TaskID           string             `bson:"taskId"`
	WaveID           string             `bson:"waveId"`
	OrderNumber      string             `bson:"orderNumber"`
	SKU              string             `bson:"sku"`
	AllocationID     string             `bson:"allocationId"`
	LocationCode     string             `bson:"locationCode"`
	RequiredQuantity int                `bson:"requiredQuantity"`
	PickedQuantity   int                `bson:"pickedQuantity"`
	PickSequence     int                `bson:"pickSequence"`
	Status           PickTaskStatus     `bson:"status"`
	AssignedTo       string             `bson:"assignedTo,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	CompletedAt      *time.Time         `bson:"completedAt,omitempty"`
}

// NewPickTask creates a pending pick task for one allocation
func NewPickTask(taskID, waveID, orderNumber, sku, allocationID, locationCode string, required int) *PickTask {
	return &PickTask{
		TaskID:           taskID,
		WaveID:           waveID,
		OrderNumber:      orderNumber,
		SKU:              sku,
		AllocationID:     allocationID,
		LocationCode:     locationCode,
		RequiredQuantity: required,
		Status:           PickTaskStatusPending,
		CreatedAt:        time.Now(),
	}
}

// Assign hands the task to a picker
func (t *PickTask) Assign(staffID string) error {
	if t.Status != PickTaskStatusPending {
		return ErrInvalidTransition
	}
	t.Status = PickTaskStatusAssigned
	t.AssignedTo = staffID
	return nil
}

// Start marks the task in progress
func (t *PickTask) Start() error {
	if t.Status != PickTaskStatusPending && t.Status != PickTaskStatusAssigned {
		return ErrInvalidTransition
	}
	t.Status = PickTaskStatusInProgress
	return nil
}

// Complete records the picked quantity. An exact pick completes the task; a
// short pick leaves it in exception. Over-picks are rejected outright.
func (t *PickTask) Complete(picked int, now time.Time) error {
	switch t.Status {
	case PickTaskStatusPending, PickTaskStatusAssigned, PickTaskStatusInProgress:
	default:
		return ErrInvalidTransition
	}
	if picked < 0 {
		return errors.New("picked quantity must not be negative")
	}
	if picked > t.RequiredQuantity {
		return ErrOverPick
	}

	t.PickedQuantity = picked
	t.CompletedAt = &now
	if picked == t.RequiredQuantity {
		t.Status = PickTaskStatusCompleted
	} else {
		t.Status = PickTaskStatusException
	}
	return nil
}

// Shortfall is the quantity the pick came up short
func (t *PickTask) Shortfall() int {
	return t.RequiredQuantity - t.PickedQuantity
}

// ZonePrefix returns the zone component of the task's location code, the
// part before the first separator ("A-01-02" yields "A").
func (t *PickTask) ZonePrefix() string {
	for i := 0; i < len(t.LocationCode); i++ {
		if t.LocationCode[i] == '-' {
			return t.LocationCode[:i]
		}
	}
	return t.LocationCode
}

// PickException records a shortfall on a completed-short task. No automatic
// re-pick is scheduled; the order line remains short until resolved manually.
type PickException struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ExceptionID string             `bson:"exceptionId"`
	TaskID      string             `bson:"taskId"`
	WaveID      string             `bson:"waveId"`
	OrderNumber string             `bson:"orderNumber"`
	SKU         string             `bson:"sku"`
	Shortfall   int                `bson:"shortfall"`
	Resolved    bool               `bson:"resolved"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// NewPickException records the shortfall on a short pick
func NewPickException(exceptionID string, task *PickTask) *PickException {
	return &PickException{
		ExceptionID: exceptionID,
		TaskID:      task.TaskID,
		WaveID:      task.WaveID,
		OrderNumber: task.OrderNumber,
		SKU:         task.SKU,
		Shortfall:   task.Shortfall(),
		CreatedAt:   time.Now(),
	}
}
