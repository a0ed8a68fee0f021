package domain

import "time"

// PickTasksGeneratedEvent is emitted once a wave's allocations are expanded
type PickTasksGeneratedEvent struct {
	WaveID    string    `json:"waveId"`
	TaskCount int       `json:"taskCount"`
	Timestamp time.Time `json:"timestamp"`
}

func (e PickTasksGeneratedEvent) EventType() string     { return "fulfillment.pick.tasks_generated" }
func (e PickTasksGeneratedEvent) OccurredAt() time.Time { return e.Timestamp }

// PickCompletedEvent is emitted per completed pick task
type PickCompletedEvent struct {
	TaskID      string    `json:"taskId"`
	OrderNumber string    `json:"orderNumber"`
	SKU         string    `json:"sku"`
	Picked      int       `json:"picked"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e PickCompletedEvent) EventType() string     { return "fulfillment.pick.completed" }
func (e PickCompletedEvent) OccurredAt() time.Time { return e.Timestamp }

// PickExceptionEvent is emitted when a pick comes up short
type PickExceptionEvent struct {
	ExceptionID string    `json:"exceptionId"`
	TaskID      string    `json:"taskId"`
	OrderNumber string    `json:"orderNumber"`
	SKU         string    `json:"sku"`
	Shortfall   int       `json:"shortfall"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e PickExceptionEvent) EventType() string     { return "fulfillment.pick.exception" }
func (e PickExceptionEvent) OccurredAt() time.Time { return e.Timestamp }
