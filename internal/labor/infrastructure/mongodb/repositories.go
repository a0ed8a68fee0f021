package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/labor/domain"
)

// StaffRepository is the MongoDB adapter for the staff roster
type StaffRepository struct {
	collection *mongo.Collection
}

// NewStaffRepository creates the repository and ensures its indexes
func NewStaffRepository(db *mongo.Database) (*StaffRepository, error) {
	repo := &StaffRepository{collection: db.Collection("staff")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "staffId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "skills", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create staff indexes: %w", err)
	}
	return repo, nil
}

// Save upserts a staff member by staff id
func (r *StaffRepository) Save(ctx context.Context, member *domain.StaffMember) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"staffId": member.StaffID},
		bson.M{"$set": member},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save staff member %s: %w", member.StaffID, err)
	}
	return nil
}

// FindByStaffID returns the member or nil when absent
func (r *StaffRepository) FindByStaffID(ctx context.Context, staffID string) (*domain.StaffMember, error) {
	var member domain.StaffMember
	err := r.collection.FindOne(ctx, bson.M{"staffId": staffID}).Decode(&member)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find staff member %s: %w", staffID, err)
	}
	return &member, nil
}

// FindAvailable returns active workers with no current assignment holding a
// skill, all active idle workers when skill is empty
func (r *StaffRepository) FindAvailable(ctx context.Context, skill string) ([]*domain.StaffMember, error) {
	filter := bson.M{
		"active": true,
		"$or": bson.A{
			bson.M{"currentAssignment": ""},
			bson.M{"currentAssignment": bson.M{"$exists": false}},
		},
	}
	if skill != "" {
		filter["skills"] = skill
	}
	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "staffId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find available staff: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*domain.StaffMember
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode staff members: %w", err)
	}
	return members, nil
}

// EquipmentRepository is the MongoDB adapter for the equipment pool
type EquipmentRepository struct {
	collection *mongo.Collection
}

// NewEquipmentRepository creates the repository and ensures its indexes
func NewEquipmentRepository(db *mongo.Database) (*EquipmentRepository, error) {
	repo := &EquipmentRepository{collection: db.Collection("equipment")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "equipmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create equipment indexes: %w", err)
	}
	return repo, nil
}

// Save upserts equipment by equipment id
func (r *EquipmentRepository) Save(ctx context.Context, equipment *domain.Equipment) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"equipmentId": equipment.EquipmentID},
		bson.M{"$set": equipment},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save equipment %s: %w", equipment.EquipmentID, err)
	}
	return nil
}

// FindByEquipmentID returns the equipment or nil when absent
func (r *EquipmentRepository) FindByEquipmentID(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	var equipment domain.Equipment
	err := r.collection.FindOne(ctx, bson.M{"equipmentId": equipmentID}).Decode(&equipment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment %s: %w", equipmentID, err)
	}
	return &equipment, nil
}

// FindByStatus returns equipment in a given state
func (r *EquipmentRepository) FindByStatus(ctx context.Context, status domain.EquipmentStatus) ([]*domain.Equipment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "equipmentId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment by status: %w", err)
	}
	defer cursor.Close(ctx)

	var equipment []*domain.Equipment
	if err := cursor.All(ctx, &equipment); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}
	return equipment, nil
}

// AssignmentRepository is the MongoDB adapter for task assignments
type AssignmentRepository struct {
	collection *mongo.Collection
}

// NewAssignmentRepository creates the repository and ensures its indexes
func NewAssignmentRepository(db *mongo.Database) (*AssignmentRepository, error) {
	repo := &AssignmentRepository{collection: db.Collection("task_assignments")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "staffId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment indexes: %w", err)
	}
	return repo, nil
}

// Save upserts an assignment by assignment id
func (r *AssignmentRepository) Save(ctx context.Context, assignment *domain.TaskAssignment) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"assignmentId": assignment.AssignmentID},
		bson.M{"$set": assignment},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save assignment %s: %w", assignment.AssignmentID, err)
	}
	return nil
}

// FindByAssignmentID returns the assignment or nil when absent
func (r *AssignmentRepository) FindByAssignmentID(ctx context.Context, assignmentID string) (*domain.TaskAssignment, error) {
	var assignment domain.TaskAssignment
	err := r.collection.FindOne(ctx, bson.M{"assignmentId": assignmentID}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment %s: %w", assignmentID, err)
	}
	return &assignment, nil
}

// FindActiveByTask returns the active assignment for a task, nil when none
func (r *AssignmentRepository) FindActiveByTask(ctx context.Context, taskID string) (*domain.TaskAssignment, error) {
	var assignment domain.TaskAssignment
	err := r.collection.FindOne(ctx,
		bson.M{"taskId": taskID, "status": domain.AssignmentActive}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assignment for task %s: %w", taskID, err)
	}
	return &assignment, nil
}

// FindActiveByStaff returns a worker's active assignments
func (r *AssignmentRepository) FindActiveByStaff(ctx context.Context, staffID string) ([]*domain.TaskAssignment, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"staffId": staffID, "status": domain.AssignmentActive},
		options.Find().SetSort(bson.D{{Key: "assignedAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find assignments for %s: %w", staffID, err)
	}
	defer cursor.Close(ctx)

	var assignments []*domain.TaskAssignment
	if err := cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode assignments: %w", err)
	}
	return assignments, nil
}
