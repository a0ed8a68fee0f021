package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus represents the lifecycle of a task assignment
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// TaskType categorizes dispatched warehouse work
type TaskType string

const (
	TaskPick        TaskType = "pick"
	TaskPutAway     TaskType = "put_away"
	TaskPack        TaskType = "pack"
	TaskReceiving   TaskType = "receiving"
	TaskCycleCount  TaskType = "cycle_count"
	TaskMaintenance TaskType = "maintenance"
)

// TaskAssignment binds a worker, and optionally equipment, to a unit of work
type TaskAssignment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	AssignmentID     string             `bson:"assignmentId"`
	TaskID           string             `bson:"taskId"`
	TaskType         TaskType           `bson:"taskType"`
	StaffID          string             `bson:"staffId"`
	EquipmentID      string             `bson:"equipmentId,omitempty"`
	Status           AssignmentStatus   `bson:"status"`
	EstimatedMinutes float64            `bson:"estimatedMinutes"`
	ActualMinutes    float64            `bson:"actualMinutes"`
	AssignedAt       time.Time          `bson:"assignedAt"`
	CompletedAt      *time.Time         `bson:"completedAt,omitempty"`
}

// NewTaskAssignment creates an active assignment
func NewTaskAssignment(assignmentID, taskID string, taskType TaskType, staffID, equipmentID string, estimatedMinutes float64, now time.Time) *TaskAssignment {
	return &TaskAssignment{
		AssignmentID:     assignmentID,
		TaskID:           taskID,
		TaskType:         taskType,
		StaffID:          staffID,
		EquipmentID:      equipmentID,
		Status:           AssignmentActive,
		EstimatedMinutes: estimatedMinutes,
		AssignedAt:       now,
	}
}

// Complete closes the assignment and records the actual duration
func (a *TaskAssignment) Complete(now time.Time) error {
	if a.Status != AssignmentActive {
		return ErrInvalidStatus
	}
	a.Status = AssignmentCompleted
	a.ActualMinutes = now.Sub(a.AssignedAt).Minutes()
	a.CompletedAt = &now
	return nil
}

// Cancel abandons the assignment without recording a duration
func (a *TaskAssignment) Cancel() error {
	if a.Status != AssignmentActive {
		return ErrInvalidStatus
	}
	a.Status = AssignmentCancelled
	return nil
}

// OverEstimate reports whether the task ran past its estimate
func (a *TaskAssignment) OverEstimate() bool {
	return a.EstimatedMinutes > 0 && a.ActualMinutes > a.EstimatedMinutes
}
