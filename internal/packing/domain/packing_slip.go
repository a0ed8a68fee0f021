package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrNoPackages   = errors.New("packing requires at least one package")
	ErrEmptyPackage = errors.New("package has no contents")
)

// Dimensions of a package in centimeters
type Dimensions struct {
	LengthCm float64 `bson:"lengthCm"`
	WidthCm  float64 `bson:"widthCm"`
	HeightCm float64 `bson:"heightCm"`
}

// VolumeCubicMeters returns the package volume in cubic meters
func (d Dimensions) VolumeCubicMeters() float64 {
	return d.LengthCm * d.WidthCm * d.HeightCm / 1_000_000
}

// PackedItem is one SKU quantity inside a package
type PackedItem struct {
	SKU      string `bson:"sku"`
	Quantity int    `bson:"quantity"`
}

// Package is one physical parcel of a packed order. The tracking number is
// stamped later, when the shipment is manifested.
type Package struct {
	PackageID      string       `bson:"packageId"`
	WeightKg       float64      `bson:"weightKg"`
	Dimensions     Dimensions   `bson:"dimensions"`
	Contents       []PackedItem `bson:"contents"`
	TrackingNumber string       `bson:"trackingNumber,omitempty"`
}

// PackingSlip is the manifest produced when an order is packed
type PackingSlip struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SlipNumber  string             `bson:"slipNumber"`
	OrderNumber string             `bson:"orderNumber"`
	WaveID      string             `bson:"waveId,omitempty"`
	Packages    []Package          `bson:"packages"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// NewPackingSlip builds the manifest for a packed order
func NewPackingSlip(slipNumber, orderNumber, waveID string, packages []Package) (*PackingSlip, error) {
	if len(packages) == 0 {
		return nil, ErrNoPackages
	}
	for _, pkg := range packages {
		if len(pkg.Contents) == 0 {
			return nil, ErrEmptyPackage
		}
	}
	return &PackingSlip{
		SlipNumber:  slipNumber,
		OrderNumber: orderNumber,
		WaveID:      waveID,
		Packages:    packages,
		CreatedAt:   time.Now(),
	}, nil
}

// TotalWeightKg sums package weights
func (s *PackingSlip) TotalWeightKg() float64 {
	total := 0.0
	for _, pkg := range s.Packages {
		total += pkg.WeightKg
	}
	return total
}

// TotalVolumeCubicMeters sums package volumes
func (s *PackingSlip) TotalVolumeCubicMeters() float64 {
	total := 0.0
	for _, pkg := range s.Packages {
		total += pkg.Dimensions.VolumeCubicMeters()
	}
	return total
}

// PackedQuantity returns the packed units of a SKU across packages
func (s *PackingSlip) PackedQuantity(sku string) int {
	total := 0
	for _, pkg := range s.Packages {
		for _, item := range pkg.Contents {
			if item.SKU == sku {
				total += item.Quantity
			}
		}
	}
	return total
}
