package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrLocationExists    = errors.New("location already exists")
	ErrLocationNotFound  = errors.New("location not found")
	ErrCapacityExceeded  = errors.New("location capacity exceeded")
	ErrInvalidCapacity   = errors.New("invalid capacity")
	ErrNegativeOccupancy = errors.New("occupancy cannot go negative")
)

// LocationType represents the functional type of a warehouse location
type LocationType string

const (
	LocationTypeStorage    LocationType = "storage"
	LocationTypePicking    LocationType = "picking"
	LocationTypeReceiving  LocationType = "receiving"
	LocationTypeShipping   LocationType = "shipping"
	LocationTypeQuarantine LocationType = "quarantine"
	LocationTypeReturns    LocationType = "returns"
)

// IsValid reports whether t is a known location type
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeStorage, LocationTypePicking, LocationTypeReceiving,
		LocationTypeShipping, LocationTypeQuarantine, LocationTypeReturns:
		return true
	}
	return false
}

// Hierarchy places a location inside the physical slotting model
type Hierarchy struct {
	Warehouse string `bson:"warehouse"`
	Zone      string `bson:"zone"`
	Aisle     string `bson:"aisle"`
	Bay       string `bson:"bay"`
	Shelf     string `bson:"shelf"`
	Bin       string `bson:"bin"`
}

// Attributes mirrors product storage requirements
type Attributes struct {
	TemperatureControlled bool `bson:"temperatureControlled"`
	Hazmat                bool `bson:"hazmat"`
	SecurityLevel         int  `bson:"securityLevel"`
}

// Location is the aggregate root for the facility slotting model. Locations
// are created by warehouse setup and rarely mutated afterwards.
type Location struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Code        string             `bson:"code"`
	Type        LocationType       `bson:"type"`
	Hierarchy   Hierarchy          `bson:"hierarchy"`
	Attributes  Attributes         `bson:"attributes"`
	ForwardPick bool               `bson:"forwardPick"`
	Capacity    int                `bson:"capacity"`
	Occupied    int                `bson:"occupied"`
	Active      bool               `bson:"active"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// NewLocation creates a new Location
func NewLocation(code string, locType LocationType, hierarchy Hierarchy, capacity int) (*Location, error) {
	if code == "" {
		return nil, errors.New("location code is required")
	}
	if !locType.IsValid() {
		return nil, errors.New("invalid location type")
	}
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	now := time.Now()
	return &Location{
		Code:      code,
		Type:      locType,
		Hierarchy: hierarchy,
		Capacity:  capacity,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Available returns the remaining unit capacity, or a large value when the
// location is uncapped (Capacity == 0)
func (l *Location) Available() int {
	if l.Capacity == 0 {
		return int(^uint(0) >> 1)
	}
	return l.Capacity - l.Occupied
}

// CanHold reports whether quantity more units fit
func (l *Location) CanHold(quantity int) bool {
	return l.Capacity == 0 || l.Occupied+quantity <= l.Capacity
}

// ReserveCapacity accounts for quantity units placed at the location
func (l *Location) ReserveCapacity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidCapacity
	}
	if !l.CanHold(quantity) {
		return ErrCapacityExceeded
	}
	l.Occupied += quantity
	l.UpdatedAt = time.Now()
	return nil
}

// ReleaseCapacity accounts for quantity units removed from the location
func (l *Location) ReleaseCapacity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidCapacity
	}
	if l.Occupied-quantity < 0 {
		return ErrNegativeOccupancy
	}
	l.Occupied -= quantity
	l.UpdatedAt = time.Now()
	return nil
}

// SuitableFor reports whether the location satisfies the given storage
// requirements
func (l *Location) SuitableFor(req StorageRequirements) bool {
	if req.TemperatureControlled && !l.Attributes.TemperatureControlled {
		return false
	}
	if req.Hazmat && !l.Attributes.Hazmat {
		return false
	}
	if req.SecurityLevel > l.Attributes.SecurityLevel {
		return false
	}
	return true
}

// StorageRequirements are the product-side storage constraints a location
// must satisfy
type StorageRequirements struct {
	TemperatureControlled bool `bson:"temperatureControlled" json:"temperatureControlled"`
	Hazmat                bool `bson:"hazmat" json:"hazmat"`
	SecurityLevel         int  `bson:"securityLevel" json:"securityLevel"`
}
