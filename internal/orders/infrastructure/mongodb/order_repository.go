package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/orders/domain"
)

// OrderRepository is the MongoDB adapter for order aggregates
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates the repository and ensures its indexes
func NewOrderRepository(db *mongo.Database) (*OrderRepository, error) {
	repo := &OrderRepository{collection: db.Collection("orders")}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create order indexes: %w", err)
	}
	return repo, nil
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "waveId", Value: 1}}},
		{Keys: bson.D{{Key: "customer.customerId", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Save upserts an order by order number
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	filter := bson.M{"orderNumber": order.OrderNumber}
	update := bson.M{"$set": order}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// FindByOrderNumber returns the order or nil when absent
func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	var order domain.Order
	err := r.collection.FindOne(ctx, bson.M{"orderNumber": orderNumber}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order %s: %w", orderNumber, err)
	}
	return &order, nil
}

// Find returns orders matching the filter, oldest first
func (r *OrderRepository) Find(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.CustomerID != "" {
		query["customer.customerId"] = filter.CustomerID
	}
	if filter.WaveID != "" {
		query["waveId"] = filter.WaveID
	}
	if filter.Carrier != "" {
		query["carrier"] = filter.Carrier
	}
	if filter.OrderedTo != nil {
		query["orderDate"] = bson.M{"$lte": *filter.OrderedTo}
	}

	opts := options.Find().SetSort(bson.D{{Key: "orderDate", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// Delete removes an order by order number
func (r *OrderRepository) Delete(ctx context.Context, orderNumber string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"orderNumber": orderNumber})
	if err != nil {
		return fmt.Errorf("failed to delete order %s: %w", orderNumber, err)
	}
	return nil
}
