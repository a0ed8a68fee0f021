package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/facility/domain"
)

// LocationRepository persists locations in the "locations" collection
type LocationRepository struct {
	collection *mongo.Collection
}

// NewLocationRepository creates the repository and ensures indexes
func NewLocationRepository(db *mongo.Database) *LocationRepository {
	repo := &LocationRepository{collection: db.Collection("locations")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *LocationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "hierarchy.zone", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save upserts a location by code
func (r *LocationRepository) Save(ctx context.Context, location *domain.Location) error {
	location.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"code": location.Code}
	update := bson.M{"$set": location}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save location %s: %w", location.Code, err)
	}
	return nil
}

// FindByCode returns the location with the given code, or nil
func (r *LocationRepository) FindByCode(ctx context.Context, code string) (*domain.Location, error) {
	var location domain.Location
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&location)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find location %s: %w", code, err)
	}
	return &location, nil
}

// Find returns locations matching the typed filter
func (r *LocationRepository) Find(ctx context.Context, filter domain.LocationFilter) ([]*domain.Location, error) {
	query := bson.M{}
	if filter.Zone != "" {
		query["hierarchy.zone"] = filter.Zone
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.ForwardPick != nil {
		query["forwardPick"] = *filter.ForwardPick
	}
	if filter.ActiveOnly {
		query["active"] = true
	}

	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer cursor.Close(ctx)

	var locations []*domain.Location
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("failed to decode locations: %w", err)
	}
	return locations, nil
}
