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

// ProductRepository persists products in the "products" collection
type ProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates the repository and ensures indexes
func NewProductRepository(db *mongo.Database) *ProductRepository {
	repo := &ProductRepository{collection: db.Collection("products")}
	repo.collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return repo
}

// Save upserts a product by SKU
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"sku": product.SKU}, bson.M{"$set": product}, opts); err != nil {
		return fmt.Errorf("failed to save product %s: %w", product.SKU, err)
	}
	return nil
}

// FindBySKU returns the product with the given SKU, or nil
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.collection.FindOne(ctx, bson.M{"sku": sku}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", sku, err)
	}
	return &product, nil
}
