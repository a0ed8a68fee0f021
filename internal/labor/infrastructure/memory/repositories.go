package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/labor/domain"
)

// StaffRepository is an in-memory adapter used by tests
type StaffRepository struct {
	mu      sync.RWMutex
	members map[string]*domain.StaffMember
}

// NewStaffRepository creates an empty repository
func NewStaffRepository() *StaffRepository {
	return &StaffRepository{members: make(map[string]*domain.StaffMember)}
}

func (r *StaffRepository) Save(ctx context.Context, member *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.StaffID] = copyStaff(member)
	return nil
}

func (r *StaffRepository) FindByStaffID(ctx context.Context, staffID string) (*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[staffID]
	if !ok {
		return nil, nil
	}
	return copyStaff(member), nil
}

func (r *StaffRepository) FindAvailable(ctx context.Context, skill string) ([]*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.StaffMember
	for _, member := range r.members {
		if !member.Active || member.Busy() {
			continue
		}
		if skill != "" && !member.HasSkill(skill) {
			continue
		}
		result = append(result, copyStaff(member))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StaffID < result[j].StaffID
	})
	return result, nil
}

func copyStaff(member *domain.StaffMember) *domain.StaffMember {
	copied := *member
	copied.Skills = append([]string(nil), member.Skills...)
	return &copied
}

// EquipmentRepository is an in-memory adapter used by tests
type EquipmentRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Equipment
}

// NewEquipmentRepository creates an empty repository
func NewEquipmentRepository() *EquipmentRepository {
	return &EquipmentRepository{items: make(map[string]*domain.Equipment)}
}

func (r *EquipmentRepository) Save(ctx context.Context, equipment *domain.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *equipment
	r.items[equipment.EquipmentID] = &copied
	return nil
}

func (r *EquipmentRepository) FindByEquipmentID(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	equipment, ok := r.items[equipmentID]
	if !ok {
		return nil, nil
	}
	copied := *equipment
	return &copied, nil
}

func (r *EquipmentRepository) FindByStatus(ctx context.Context, status domain.EquipmentStatus) ([]*domain.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Equipment
	for _, equipment := range r.items {
		if equipment.Status == status {
			copied := *equipment
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EquipmentID < result[j].EquipmentID
	})
	return result, nil
}

// AssignmentRepository is an in-memory adapter used by tests
type AssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[string]*domain.TaskAssignment
}

// NewAssignmentRepository creates an empty repository
func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{assignments: make(map[string]*domain.TaskAssignment)}
}

func (r *AssignmentRepository) Save(ctx context.Context, assignment *domain.TaskAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *assignment
	r.assignments[assignment.AssignmentID] = &copied
	return nil
}

func (r *AssignmentRepository) FindByAssignmentID(ctx context.Context, assignmentID string) (*domain.TaskAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	assignment, ok := r.assignments[assignmentID]
	if !ok {
		return nil, nil
	}
	copied := *assignment
	return &copied, nil
}

func (r *AssignmentRepository) FindActiveByTask(ctx context.Context, taskID string) (*domain.TaskAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, assignment := range r.assignments {
		if assignment.TaskID == taskID && assignment.Status == domain.AssignmentActive {
			copied := *assignment
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *AssignmentRepository) FindActiveByStaff(ctx context.Context, staffID string) ([]*domain.TaskAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.TaskAssignment
	for _, assignment := range r.assignments {
		if assignment.StaffID == staffID && assignment.Status == domain.AssignmentActive {
			copied := *assignment
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result, nil
}
