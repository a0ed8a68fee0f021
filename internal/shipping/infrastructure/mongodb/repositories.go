package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/shipping/domain"
)

// CarrierRepository is the MongoDB adapter for carriers
type CarrierRepository struct {
	collection *mongo.Collection
}

// NewCarrierRepository creates the repository and ensures its indexes
func NewCarrierRepository(db *mongo.Database) (*CarrierRepository, error) {
	repo := &CarrierRepository{collection: db.Collection("carriers")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "carrierId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "active", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create carrier indexes: %w", err)
	}
	return repo, nil
}

// Save upserts a carrier by carrier id
func (r *CarrierRepository) Save(ctx context.Context, carrier *domain.Carrier) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"carrierId": carrier.CarrierID},
		bson.M{"$set": carrier},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save carrier %s: %w", carrier.CarrierID, err)
	}
	return nil
}

// FindByCarrierID returns the carrier or nil when absent
func (r *CarrierRepository) FindByCarrierID(ctx context.Context, carrierID string) (*domain.Carrier, error) {
	var carrier domain.Carrier
	err := r.collection.FindOne(ctx, bson.M{"carrierId": carrierID}).Decode(&carrier)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find carrier %s: %w", carrierID, err)
	}
	return &carrier, nil
}

// FindActive returns active carriers ordered by carrier id
func (r *CarrierRepository) FindActive(ctx context.Context) ([]*domain.Carrier, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true},
		options.Find().SetSort(bson.D{{Key: "carrierId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find carriers: %w", err)
	}
	defer cursor.Close(ctx)

	var carriers []*domain.Carrier
	if err := cursor.All(ctx, &carriers); err != nil {
		return nil, fmt.Errorf("failed to decode carriers: %w", err)
	}
	return carriers, nil
}

// ShipmentRepository is the MongoDB adapter for shipments
type ShipmentRepository struct {
	collection *mongo.Collection
}

// NewShipmentRepository creates the repository and ensures its indexes
func NewShipmentRepository(db *mongo.Database) (*ShipmentRepository, error) {
	repo := &ShipmentRepository{collection: db.Collection("shipments")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "shipmentId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shipment indexes: %w", err)
	}
	return repo, nil
}

// Save upserts a shipment by shipment id
func (r *ShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"shipmentId": shipment.ShipmentID},
		bson.M{"$set": shipment},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save shipment %s: %w", shipment.ShipmentID, err)
	}
	return nil
}

// FindByShipmentID returns the shipment or nil when absent
func (r *ShipmentRepository) FindByShipmentID(ctx context.Context, shipmentID string) (*domain.Shipment, error) {
	return r.findOne(ctx, bson.M{"shipmentId": shipmentID})
}

// FindByOrder returns the order's shipment or nil when absent
func (r *ShipmentRepository) FindByOrder(ctx context.Context, orderNumber string) (*domain.Shipment, error) {
	return r.findOne(ctx, bson.M{"orderNumber": orderNumber})
}

func (r *ShipmentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Shipment, error) {
	var shipment domain.Shipment
	err := r.collection.FindOne(ctx, filter).Decode(&shipment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}
	return &shipment, nil
}
