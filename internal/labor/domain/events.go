package domain

import "time"

// TaskAssignedEvent is emitted when work is dispatched to a worker
type TaskAssignedEvent struct {
	AssignmentID string    `json:"assignmentId"`
	TaskID       string    `json:"taskId"`
	TaskType     TaskType  `json:"taskType"`
	StaffID      string    `json:"staffId"`
	EquipmentID  string    `json:"equipmentId,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e TaskAssignedEvent) EventType() string     { return "fulfillment.labor.task_assigned" }
func (e TaskAssignedEvent) OccurredAt() time.Time { return e.Timestamp }

// TaskCompletedEvent is emitted when an assignment closes
type TaskCompletedEvent struct {
	AssignmentID  string    `json:"assignmentId"`
	TaskID        string    `json:"taskId"`
	StaffID       string    `json:"staffId"`
	ActualMinutes float64   `json:"actualMinutes"`
	OverEstimate  bool      `json:"overEstimate"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e TaskCompletedEvent) EventType() string     { return "fulfillment.labor.task_completed" }
func (e TaskCompletedEvent) OccurredAt() time.Time { return e.Timestamp }

// MaintenanceScheduledEvent is emitted when equipment is pulled for service
type MaintenanceScheduledEvent struct {
	EquipmentID string    `json:"equipmentId"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e MaintenanceScheduledEvent) EventType() string {
	return "fulfillment.labor.maintenance_scheduled"
}
func (e MaintenanceScheduledEvent) OccurredAt() time.Time { return e.Timestamp }
