package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms-platform/fulfillment/internal/labor/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// AssignTaskCommand dispatches a unit of work to a worker
type AssignTaskCommand struct {
	TaskID           string          `validate:"required"`
	TaskType         domain.TaskType `validate:"required"`
	StaffID          string          `validate:"required"`
	EquipmentID      string          `validate:"omitempty"`
	RequiredSkill    string          `validate:"omitempty"`
	EstimatedMinutes float64         `validate:"gte=0"`
}

// DispatcherService assigns warehouse work to staff and equipment
type DispatcherService struct {
	staff       domain.StaffRepository
	equipment   domain.EquipmentRepository
	assignments domain.AssignmentRepository
	queues      queue.Publisher
	publisher   events.Publisher
	clock       clock.Clock
	logger      *logging.Logger
}

// NewDispatcherService wires the labor dispatcher
func NewDispatcherService(
	staff domain.StaffRepository,
	equipment domain.EquipmentRepository,
	assignments domain.AssignmentRepository,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *DispatcherService {
	return &DispatcherService{
		staff:       staff,
		equipment:   equipment,
		assignments: assignments,
		queues:      queues,
		publisher:   publisher,
		clock:       clk,
		logger:      logger.WithComponent("labor.dispatcher"),
	}
}

// RegisterStaff adds a worker to the roster
func (s *DispatcherService) RegisterStaff(ctx context.Context, staffID, name string, skills []string) (*domain.StaffMember, error) {
	existing, err := s.staff.FindByStaffID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("staff member", staffID)
	}
	member := domain.NewStaffMember(staffID, name, skills)
	if err := s.staff.Save(ctx, member); err != nil {
		return nil, err
	}
	s.logger.Info("staff member registered", "staffId", staffID, "skills", skills)
	return member, nil
}

// RegisterEquipment adds a piece of equipment to the pool
func (s *DispatcherService) RegisterEquipment(ctx context.Context, equipmentID, equipmentType string) (*domain.Equipment, error) {
	existing, err := s.equipment.FindByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("equipment", equipmentID)
	}
	item := domain.NewEquipment(equipmentID, equipmentType)
	if err := s.equipment.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("equipment registered", "equipmentId", equipmentID, "type", equipmentType)
	return item, nil
}

// AssignTask dispatches a task to a worker, reserving equipment when the
// command names a piece. Assignment fails fast: a busy worker or unavailable
// equipment rejects the command and the prior assignment is untouched.
func (s *DispatcherService) AssignTask(ctx context.Context, cmd AssignTaskCommand) (*domain.TaskAssignment, error) {
	member, err := s.staff.FindByStaffID(ctx, cmd.StaffID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.ErrNotFoundWithID("staff member", cmd.StaffID)
	}
	if !member.Active {
		return nil, errors.ErrConflict("staff member " + cmd.StaffID + " is not active")
	}
	if cmd.RequiredSkill != "" && !member.HasSkill(cmd.RequiredSkill) {
		return nil, errors.ErrValidation("staff member " + cmd.StaffID + " lacks skill " + cmd.RequiredSkill)
	}
	if member.Busy() {
		return nil, errors.ErrResourceBusy("staff member", cmd.StaffID)
	}

	var item *domain.Equipment
	if cmd.EquipmentID != "" {
		item, err = s.equipment.FindByEquipmentID(ctx, cmd.EquipmentID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, errors.ErrNotFoundWithID("equipment", cmd.EquipmentID)
		}
		if item.Status != domain.EquipmentAvailable {
			return nil, errors.ErrResourceBusy("equipment", cmd.EquipmentID)
		}
	}

	now := s.clock.Now()
	assignment := domain.NewTaskAssignment(
		"TA-"+uuid.NewString()[:8],
		cmd.TaskID, cmd.TaskType, cmd.StaffID, cmd.EquipmentID,
		cmd.EstimatedMinutes, now,
	)
	if err := member.Assign(assignment.AssignmentID); err != nil {
		return nil, errors.ErrResourceBusy("staff member", cmd.StaffID).Wrap(err)
	}
	if item != nil {
		if err := item.Use(assignment.AssignmentID); err != nil {
			return nil, errors.ErrResourceBusy("equipment", cmd.EquipmentID).Wrap(err)
		}
		if err := s.equipment.Save(ctx, item); err != nil {
			return nil, err
		}
	}
	if err := s.assignments.Save(ctx, assignment); err != nil {
		return nil, err
	}
	if err := s.staff.Save(ctx, member); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.TaskAssignedEvent{
		AssignmentID: assignment.AssignmentID,
		TaskID:       cmd.TaskID,
		TaskType:     cmd.TaskType,
		StaffID:      cmd.StaffID,
		EquipmentID:  cmd.EquipmentID,
		Timestamp:    now,
	})
	s.logger.Info("task assigned",
		"assignmentId", assignment.AssignmentID,
		"taskId", cmd.TaskID,
		"staffId", cmd.StaffID,
		"equipmentId", cmd.EquipmentID)
	return assignment, nil
}

// DispatchTask assigns a task to the first idle worker holding the skill.
// Redelivered work finds its existing active assignment instead of creating a
// second one. With every skilled worker busy the task stays queued.
func (s *DispatcherService) DispatchTask(ctx context.Context, taskID string, taskType domain.TaskType, skill string, estimatedMinutes float64) (*domain.TaskAssignment, error) {
	existing, err := s.assignments.FindActiveByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	candidates, err := s.staff.FindAvailable(ctx, skill)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.NewAppError(errors.CodeResourceBusy,
			"no idle worker holds skill "+skill).WithDetail("taskId", taskID)
	}
	return s.AssignTask(ctx, AssignTaskCommand{
		TaskID:           taskID,
		TaskType:         taskType,
		StaffID:          candidates[0].StaffID,
		RequiredSkill:    skill,
		EstimatedMinutes: estimatedMinutes,
	})
}

// CompleteAssignment closes an assignment, rolls the duration into the
// worker's performance record and releases any reserved equipment
func (s *DispatcherService) CompleteAssignment(ctx context.Context, assignmentID string) (*domain.TaskAssignment, error) {
	assignment, err := s.assignments.FindByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, errors.ErrNotFoundWithID("assignment", assignmentID)
	}
	now := s.clock.Now()
	if err := assignment.Complete(now); err != nil {
		return nil, errors.ErrConflict("assignment " + assignmentID + " is not active")
	}

	member, err := s.staff.FindByStaffID(ctx, assignment.StaffID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.ErrNotFoundWithID("staff member", assignment.StaffID)
	}
	if err := member.FinishAssignment(assignment.ActualMinutes, assignment.EstimatedMinutes); err != nil {
		return nil, errors.ErrConflict("staff member " + assignment.StaffID + " has no active task")
	}

	if assignment.EquipmentID != "" {
		item, err := s.equipment.FindByEquipmentID(ctx, assignment.EquipmentID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			if err := item.Release(assignment.ActualMinutes); err != nil {
				return nil, err
			}
			if err := s.equipment.Save(ctx, item); err != nil {
				return nil, err
			}
		}
	}

	if err := s.assignments.Save(ctx, assignment); err != nil {
		return nil, err
	}
	if err := s.staff.Save(ctx, member); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.TaskCompletedEvent{
		AssignmentID:  assignment.AssignmentID,
		TaskID:        assignment.TaskID,
		StaffID:       assignment.StaffID,
		ActualMinutes: assignment.ActualMinutes,
		OverEstimate:  assignment.OverEstimate(),
		Timestamp:     now,
	})
	s.logger.Info("assignment completed",
		"assignmentId", assignmentID,
		"staffId", assignment.StaffID,
		"actualMinutes", assignment.ActualMinutes)
	return assignment, nil
}

// CancelAssignment abandons an active assignment and frees its resources
// without touching the worker's performance record
func (s *DispatcherService) CancelAssignment(ctx context.Context, assignmentID string) error {
	assignment, err := s.assignments.FindByAssignmentID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return errors.ErrNotFoundWithID("assignment", assignmentID)
	}
	if err := assignment.Cancel(); err != nil {
		return errors.ErrConflict("assignment " + assignmentID + " is not active")
	}

	member, err := s.staff.FindByStaffID(ctx, assignment.StaffID)
	if err != nil {
		return err
	}
	if member != nil && member.CurrentAssignment == assignmentID {
		member.CurrentAssignment = ""
		if err := s.staff.Save(ctx, member); err != nil {
			return err
		}
	}
	if assignment.EquipmentID != "" {
		item, err := s.equipment.FindByEquipmentID(ctx, assignment.EquipmentID)
		if err != nil {
			return err
		}
		if item != nil && item.Status == domain.EquipmentInUse {
			if err := item.Release(0); err != nil {
				return err
			}
			if err := s.equipment.Save(ctx, item); err != nil {
				return err
			}
		}
	}
	if err := s.assignments.Save(ctx, assignment); err != nil {
		return err
	}
	s.logger.Info("assignment cancelled", "assignmentId", assignmentID)
	return nil
}

// ScheduleMaintenance pulls equipment from the assignable pool and enqueues
// the maintenance work
func (s *DispatcherService) ScheduleMaintenance(ctx context.Context, equipmentID, description string) error {
	item, err := s.equipment.FindByEquipmentID(ctx, equipmentID)
	if err != nil {
		return err
	}
	if item == nil {
		return errors.ErrNotFoundWithID("equipment", equipmentID)
	}
	if err := item.StartMaintenance(); err != nil {
		return errors.ErrResourceBusy("equipment", equipmentID).Wrap(err)
	}
	if err := s.equipment.Save(ctx, item); err != nil {
		return err
	}
	if err := s.queues.Publish(ctx, queue.Maintenance, queue.MaintenanceWork{
		EquipmentID: equipmentID,
		Description: description,
	}); err != nil {
		return err
	}
	s.publisher.Publish(ctx, domain.MaintenanceScheduledEvent{
		EquipmentID: equipmentID,
		Description: description,
		Timestamp:   s.clock.Now(),
	})
	s.logger.Info("maintenance scheduled", "equipmentId", equipmentID, "description", description)
	return nil
}

// CompleteMaintenance returns serviced equipment to the pool
func (s *DispatcherService) CompleteMaintenance(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	item, err := s.equipment.FindByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("equipment", equipmentID)
	}
	if err := item.FinishMaintenance(); err != nil {
		return nil, errors.ErrConflict("equipment " + equipmentID + " is not under maintenance")
	}
	if err := s.equipment.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("maintenance completed", "equipmentId", equipmentID, "count", item.MaintenanceCount)
	return item, nil
}

// GetStaffMember returns a worker by ID
func (s *DispatcherService) GetStaffMember(ctx context.Context, staffID string) (*domain.StaffMember, error) {
	member, err := s.staff.FindByStaffID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, errors.ErrNotFoundWithID("staff member", staffID)
	}
	return member, nil
}

// GetEquipment returns a piece of equipment by ID
func (s *DispatcherService) GetEquipment(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	item, err := s.equipment.FindByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("equipment", equipmentID)
	}
	return item, nil
}

// GetAssignment returns an assignment by ID
func (s *DispatcherService) GetAssignment(ctx context.Context, assignmentID string) (*domain.TaskAssignment, error) {
	assignment, err := s.assignments.FindByAssignmentID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, errors.ErrNotFoundWithID("assignment", assignmentID)
	}
	return assignment, nil
}
