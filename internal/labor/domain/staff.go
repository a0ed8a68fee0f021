package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrStaffBusy     = errors.New("staff member already has an active task")
	ErrStaffIdle     = errors.New("staff member has no active task")
	ErrStaffInactive = errors.New("staff member is not active")
	ErrEquipmentBusy = errors.New("equipment is not available")
	ErrInvalidStatus = errors.New("invalid status transition")
)

// StaffPerformance is a rolling completion record
type StaffPerformance struct {
	TasksCompleted  int     `bson:"tasksCompleted"`
	TotalMinutes    float64 `bson:"totalMinutes"`
	OnEstimateCount int     `bson:"onEstimateCount"`
}

// AverageMinutes is the mean task duration, 0 with no history
func (p StaffPerformance) AverageMinutes() float64 {
	if p.TasksCompleted == 0 {
		return 0
	}
	return p.TotalMinutes / float64(p.TasksCompleted)
}

// OnEstimateRate is the fraction of tasks finished within their estimate
func (p StaffPerformance) OnEstimateRate() float64 {
	if p.TasksCompleted == 0 {
		return 0
	}
	return float64(p.OnEstimateCount) / float64(p.TasksCompleted)
}

// StaffMember is a warehouse worker. At most one active assignment at a time.
type StaffMember struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	StaffID           string             `bson:"staffId"`
	Name              string             `bson:"name"`
	Skills            []string           `bson:"skills"`
	Active            bool               `bson:"active"`
	CurrentAssignment string             `bson:"currentAssignment,omitempty"`
	Performance       StaffPerformance   `bson:"performance"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

// NewStaffMember registers an active worker
func NewStaffMember(staffID, name string, skills []string) *StaffMember {
	return &StaffMember{
		StaffID:   staffID,
		Name:      name,
		Skills:    skills,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// HasSkill reports whether the worker holds a skill
func (m *StaffMember) HasSkill(skill string) bool {
	for _, held := range m.Skills {
		if held == skill {
			return true
		}
	}
	return false
}

// Busy reports whether the worker has an active assignment
func (m *StaffMember) Busy() bool {
	return m.CurrentAssignment != ""
}

// Assign gives the worker an assignment, failing fast when busy
func (m *StaffMember) Assign(assignmentID string) error {
	if !m.Active {
		return ErrStaffInactive
	}
	if m.Busy() {
		return ErrStaffBusy
	}
	m.CurrentAssignment = assignmentID
	return nil
}

// FinishAssignment clears the active assignment and rolls the duration into
// the performance record
func (m *StaffMember) FinishAssignment(actualMinutes, estimatedMinutes float64) error {
	if !m.Busy() {
		return ErrStaffIdle
	}
	m.CurrentAssignment = ""
	m.Performance.TasksCompleted++
	m.Performance.TotalMinutes += actualMinutes
	if estimatedMinutes > 0 && actualMinutes <= estimatedMinutes {
		m.Performance.OnEstimateCount++
	}
	return nil
}
