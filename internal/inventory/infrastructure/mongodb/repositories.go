package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/inventory/domain"
)

// RecordRepository persists inventory records in the "inventory_records"
// collection
type RecordRepository struct {
	collection *mongo.Collection
}

// NewRecordRepository creates the repository and ensures indexes
func NewRecordRepository(db *mongo.Database) *RecordRepository {
	repo := &RecordRepository{collection: db.Collection("inventory_records")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *RecordRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}, {Key: "locationCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sku", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "locationCode", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save upserts a record by its (sku, location) key
func (r *RecordRepository) Save(ctx context.Context, record *domain.InventoryRecord) error {
	record.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"sku": record.SKU, "locationCode": record.LocationCode}
	if _, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": record}, opts); err != nil {
		return fmt.Errorf("failed to save inventory record %s: %w", record.Key(), err)
	}
	return nil
}

// FindByKey returns the record for (sku, location), or nil
func (r *RecordRepository) FindByKey(ctx context.Context, sku, locationCode string) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.collection.FindOne(ctx, bson.M{"sku": sku, "locationCode": locationCode}).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory record %s@%s: %w", sku, locationCode, err)
	}
	return &record, nil
}

// FindBySKU returns all records for a SKU, oldest creation first
func (r *RecordRepository) FindBySKU(ctx context.Context, sku string) ([]*domain.InventoryRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sku": sku},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory for %s: %w", sku, err)
	}
	defer cursor.Close(ctx)

	var records []*domain.InventoryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode inventory records: %w", err)
	}
	return records, nil
}

// FindByLocation returns all records at a location
func (r *RecordRepository) FindByLocation(ctx context.Context, locationCode string) ([]*domain.InventoryRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"locationCode": locationCode})
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory at %s: %w", locationCode, err)
	}
	defer cursor.Close(ctx)

	var records []*domain.InventoryRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode inventory records: %w", err)
	}
	return records, nil
}

// TransactionRepository appends audit entries to the
// "inventory_transactions" collection. Entries are never updated or deleted.
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates the repository and ensures indexes
func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	repo := &TransactionRepository{collection: db.Collection("inventory_transactions")}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}, {Key: "occurredAt", Value: -1}}},
		{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return repo
}

// Append inserts an audit entry
func (r *TransactionRepository) Append(ctx context.Context, tx *domain.InventoryTransaction) error {
	if _, err := r.collection.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to append inventory transaction: %w", err)
	}
	return nil
}

// FindBySKU returns recent transactions for a SKU, newest first
func (r *TransactionRepository) FindBySKU(ctx context.Context, sku string, limit int) ([]*domain.InventoryTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{"sku": sku}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", sku, err)
	}
	defer cursor.Close(ctx)

	var txs []*domain.InventoryTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return txs, nil
}

// AllocationRepository persists allocations in the "allocations" collection
type AllocationRepository struct {
	collection *mongo.Collection
}

// NewAllocationRepository creates the repository and ensures indexes
func NewAllocationRepository(db *mongo.Database) *AllocationRepository {
	repo := &AllocationRepository{collection: db.Collection("allocations")}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "allocationId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderId", Value: 1}}},
	})
	return repo
}

// Save upserts an allocation by its ID
func (r *AllocationRepository) Save(ctx context.Context, allocation *domain.Allocation) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"allocationId": allocation.AllocationID}
	if _, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": allocation}, opts); err != nil {
		return fmt.Errorf("failed to save allocation %s: %w", allocation.AllocationID, err)
	}
	return nil
}

// FindByOrderID returns allocations for an order, oldest first
func (r *AllocationRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.Allocation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"orderId": orderID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	var allocations []*domain.Allocation
	if err := cursor.All(ctx, &allocations); err != nil {
		return nil, fmt.Errorf("failed to decode allocations: %w", err)
	}
	return allocations, nil
}

// FindByID returns one allocation, or nil
func (r *AllocationRepository) FindByID(ctx context.Context, allocationID string) (*domain.Allocation, error) {
	var allocation domain.Allocation
	err := r.collection.FindOne(ctx, bson.M{"allocationId": allocationID}).Decode(&allocation)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find allocation %s: %w", allocationID, err)
	}
	return &allocation, nil
}

// LotRepository persists lots in the "lots" collection
type LotRepository struct {
	collection *mongo.Collection
}

// NewLotRepository creates the repository and ensures indexes
func NewLotRepository(db *mongo.Database) *LotRepository {
	repo := &LotRepository{collection: db.Collection("lots")}
	repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "lotNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sku", Value: 1}}},
		{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
	})
	return repo
}

// Save upserts a lot by number
func (r *LotRepository) Save(ctx context.Context, lot *domain.Lot) error {
	lot.UpdatedAt = time.Now()
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"lotNumber": lot.LotNumber}, bson.M{"$set": lot}, opts); err != nil {
		return fmt.Errorf("failed to save lot %s: %w", lot.LotNumber, err)
	}
	return nil
}

// FindByNumber returns one lot, or nil
func (r *LotRepository) FindByNumber(ctx context.Context, lotNumber string) (*domain.Lot, error) {
	var lot domain.Lot
	err := r.collection.FindOne(ctx, bson.M{"lotNumber": lotNumber}).Decode(&lot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lot %s: %w", lotNumber, err)
	}
	return &lot, nil
}

// FindBySKU returns all lots for a SKU
func (r *LotRepository) FindBySKU(ctx context.Context, sku string) ([]*domain.Lot, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sku": sku})
	if err != nil {
		return nil, fmt.Errorf("failed to query lots for %s: %w", sku, err)
	}
	defer cursor.Close(ctx)

	var lots []*domain.Lot
	if err := cursor.All(ctx, &lots); err != nil {
		return nil, fmt.Errorf("failed to decode lots: %w", err)
	}
	return lots, nil
}

// FindExpiringBefore returns lots expiring before horizon, soonest first
func (r *LotRepository) FindExpiringBefore(ctx context.Context, horizon time.Time) ([]*domain.Lot, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"expiresAt": bson.M{"$lte": horizon}},
		options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring lots: %w", err)
	}
	defer cursor.Close(ctx)

	var lots []*domain.Lot
	if err := cursor.All(ctx, &lots); err != nil {
		return nil, fmt.Errorf("failed to decode lots: %w", err)
	}
	return lots, nil
}
