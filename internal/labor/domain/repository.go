package domain

import "context"

// StaffRepository provides access to the staff roster
type StaffRepository interface {
	Save(ctx context.Context, member *StaffMember) error
	FindByStaffID(ctx context.Context, staffID string) (*StaffMember, error)
	FindAvailable(ctx context.Context, skill string) ([]*StaffMember, error)
}

// EquipmentRepository provides access to the equipment pool
type EquipmentRepository interface {
	Save(ctx context.Context, equipment *Equipment) error
	FindByEquipmentID(ctx context.Context, equipmentID string) (*Equipment, error)
	FindByStatus(ctx context.Context, status EquipmentStatus) ([]*Equipment, error)
}

// AssignmentRepository provides access to task assignments
type AssignmentRepository interface {
	Save(ctx context.Context, assignment *TaskAssignment) error
	FindByAssignmentID(ctx context.Context, assignmentID string) (*TaskAssignment, error)
	FindActiveByStaff(ctx context.Context, staffID string) ([]*TaskAssignment, error)
	FindActiveByTask(ctx context.Context, taskID string) (*TaskAssignment, error)
}
