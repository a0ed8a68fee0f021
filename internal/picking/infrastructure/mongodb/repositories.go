package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/picking/domain"
)

// PickTaskRepository is the MongoDB adapter for pick tasks
type PickTaskRepository struct {
	collection *mongo.Collection
}

// NewPickTaskRepository creates the repository and ensures its indexes
func NewPickTaskRepository(db *mongo.Database) (*PickTaskRepository, error) {
	repo := &PickTaskRepository{collection: db.Collection("pick_tasks")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "taskId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "waveId", Value: 1}, {Key: "pickSequence", Value: 1}}},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pick task indexes: %w", err)
	}
	return repo, nil
}

// Save upserts a task by task id
func (r *PickTaskRepository) Save(ctx context.Context, task *domain.PickTask) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"taskId": task.TaskID},
		bson.M{"$set": task},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save pick task %s: %w", task.TaskID, err)
	}
	return nil
}

// FindByTaskID returns the task or nil when absent
func (r *PickTaskRepository) FindByTaskID(ctx context.Context, taskID string) (*domain.PickTask, error) {
	var task domain.PickTask
	err := r.collection.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pick task %s: %w", taskID, err)
	}
	return &task, nil
}

// FindByWave returns a wave's tasks in pick-sequence order
func (r *PickTaskRepository) FindByWave(ctx context.Context, waveID string) ([]*domain.PickTask, error) {
	return r.find(ctx, bson.M{"waveId": waveID})
}

// FindByOrder returns an order's tasks in pick-sequence order
func (r *PickTaskRepository) FindByOrder(ctx context.Context, orderNumber string) ([]*domain.PickTask, error) {
	return r.find(ctx, bson.M{"orderNumber": orderNumber})
}

func (r *PickTaskRepository) find(ctx context.Context, filter bson.M) ([]*domain.PickTask, error) {
	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "pickSequence", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find pick tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*domain.PickTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode pick tasks: %w", err)
	}
	return tasks, nil
}

// PickExceptionRepository is the MongoDB adapter for pick shortfalls
type PickExceptionRepository struct {
	collection *mongo.Collection
}

// NewPickExceptionRepository creates the repository and ensures its indexes
func NewPickExceptionRepository(db *mongo.Database) (*PickExceptionRepository, error) {
	repo := &PickExceptionRepository{collection: db.Collection("pick_exceptions")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "exceptionId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "resolved", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pick exception indexes: %w", err)
	}
	return repo, nil
}

// Save upserts an exception by exception id
func (r *PickExceptionRepository) Save(ctx context.Context, exception *domain.PickException) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"exceptionId": exception.ExceptionID},
		bson.M{"$set": exception},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save pick exception %s: %w", exception.ExceptionID, err)
	}
	return nil
}

// FindOpen returns unresolved exceptions
func (r *PickExceptionRepository) FindOpen(ctx context.Context) ([]*domain.PickException, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"resolved": false})
	if err != nil {
		return nil, fmt.Errorf("failed to find pick exceptions: %w", err)
	}
	defer cursor.Close(ctx)

	var exceptions []*domain.PickException
	if err := cursor.All(ctx, &exceptions); err != nil {
		return nil, fmt.Errorf("failed to decode pick exceptions: %w", err)
	}
	return exceptions, nil
}
