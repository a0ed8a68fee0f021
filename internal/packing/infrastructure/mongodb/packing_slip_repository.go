package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/packing/domain"
)

// PackingSlipRepository is the MongoDB adapter for packing slips
type PackingSlipRepository struct {
	collection *mongo.Collection
}

// NewPackingSlipRepository creates the repository and ensures its indexes
func NewPackingSlipRepository(db *mongo.Database) (*PackingSlipRepository, error) {
	repo := &PackingSlipRepository{collection: db.Collection("packing_slips")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "slipNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create packing slip indexes: %w", err)
	}
	return repo, nil
}

// Save upserts a slip by slip number
func (r *PackingSlipRepository) Save(ctx context.Context, slip *domain.PackingSlip) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"slipNumber": slip.SlipNumber},
		bson.M{"$set": slip},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save packing slip %s: %w", slip.SlipNumber, err)
	}
	return nil
}

// FindBySlipNumber returns the slip or nil when absent
func (r *PackingSlipRepository) FindBySlipNumber(ctx context.Context, slipNumber string) (*domain.PackingSlip, error) {
	return r.findOne(ctx, bson.M{"slipNumber": slipNumber})
}

// FindByOrder returns the order's slip or nil when absent
func (r *PackingSlipRepository) FindByOrder(ctx context.Context, orderNumber string) (*domain.PackingSlip, error) {
	return r.findOne(ctx, bson.M{"orderNumber": orderNumber})
}

func (r *PackingSlipRepository) findOne(ctx context.Context, filter bson.M) (*domain.PackingSlip, error) {
	var slip domain.PackingSlip
	err := r.collection.FindOne(ctx, filter).Decode(&slip)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find packing slip: %w", err)
	}
	return &slip, nil
}
