package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/returns/domain"
)

// RMARepository is the MongoDB adapter for return authorizations
type RMARepository struct {
	collection *mongo.Collection
}

// NewRMARepository creates the repository and ensures its indexes
func NewRMARepository(db *mongo.Database) (*RMARepository, error) {
	repo := &RMARepository{collection: db.Collection("rmas")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "rmaNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rma indexes: %w", err)
	}
	return repo, nil
}

// Save upserts an RMA by number
func (r *RMARepository) Save(ctx context.Context, rma *domain.RMA) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"rmaNumber": rma.RMANumber},
		bson.M{"$set": rma},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save rma %s: %w", rma.RMANumber, err)
	}
	return nil
}

// FindByRMANumber returns the RMA or nil when absent
func (r *RMARepository) FindByRMANumber(ctx context.Context, rmaNumber string) (*domain.RMA, error) {
	var rma domain.RMA
	err := r.collection.FindOne(ctx, bson.M{"rmaNumber": rmaNumber}).Decode(&rma)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rma %s: %w", rmaNumber, err)
	}
	return &rma, nil
}

// FindByOrder returns every RMA raised against an order
func (r *RMARepository) FindByOrder(ctx context.Context, orderNumber string) ([]*domain.RMA, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"orderNumber": orderNumber},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find rmas: %w", err)
	}
	defer cursor.Close(ctx)

	var rmas []*domain.RMA
	if err := cursor.All(ctx, &rmas); err != nil {
		return nil, fmt.Errorf("failed to decode rmas: %w", err)
	}
	return rmas, nil
}
