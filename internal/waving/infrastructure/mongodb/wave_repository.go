package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/waving/domain"
)

// WaveRepository is the MongoDB adapter for wave aggregates
type WaveRepository struct {
	collection *mongo.Collection
}

// NewWaveRepository creates the repository and ensures its indexes
func NewWaveRepository(db *mongo.Database) (*WaveRepository, error) {
	repo := &WaveRepository{collection: db.Collection("waves")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "waveId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create wave indexes: %w", err)
	}
	return repo, nil
}

// Save upserts a wave by wave id
func (r *WaveRepository) Save(ctx context.Context, wave *domain.Wave) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"waveId": wave.WaveID},
		bson.M{"$set": wave},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save wave %s: %w", wave.WaveID, err)
	}
	return nil
}

// FindByID returns the wave or nil when absent
func (r *WaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	var wave domain.Wave
	err := r.collection.FindOne(ctx, bson.M{"waveId": waveID}).Decode(&wave)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wave %s: %w", waveID, err)
	}
	return &wave, nil
}

// FindByStatus returns waves in a status, oldest first
func (r *WaveRepository) FindByStatus(ctx context.Context, status domain.WaveStatus) ([]*domain.Wave, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find waves: %w", err)
	}
	defer cursor.Close(ctx)

	var waves []*domain.Wave
	if err := cursor.All(ctx, &waves); err != nil {
		return nil, fmt.Errorf("failed to decode waves: %w", err)
	}
	return waves, nil
}
