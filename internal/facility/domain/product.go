package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrProductNotFound = errors.New("product not found")

// Dimensions are the physical measurements of a product unit
type Dimensions struct {
	LengthCm float64 `bson:"lengthCm"`
	WidthCm  float64 `bson:"widthCm"`
	HeightCm float64 `bson:"heightCm"`
	WeightKg float64 `bson:"weightKg"`
}

// VolumeCm3 returns the unit volume in cubic centimetres
func (d Dimensions) VolumeCm3() float64 {
	return d.LengthCm * d.WidthCm * d.HeightCm
}

// Tracking carries the product lifecycle tracking flags
type Tracking struct {
	SerialTracked bool `bson:"serialTracked"`
	LotTracked    bool `bson:"lotTracked"`
	ExpiryTracked bool `bson:"expiryTracked"`
}

// Product identifies a stock-keeping unit. The SKU is immutable identity;
// descriptive fields may change.
type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	SKU         string              `bson:"sku"`
	Name        string              `bson:"name"`
	Description string              `bson:"description,omitempty"`
	Dimensions  Dimensions          `bson:"dimensions"`
	Storage     StorageRequirements `bson:"storage"`
	Tracking    Tracking            `bson:"tracking"`
	UnitPrice   float64             `bson:"unitPrice"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

// NewProduct creates a new Product
func NewProduct(sku, name string) (*Product, error) {
	if sku == "" {
		return nil, errors.New("sku is required")
	}
	now := time.Now()
	return &Product{
		SKU:       sku,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
