package application

import (
	"context"
	"fmt"

	"github.com/wms-platform/fulfillment/internal/facility/domain"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/logging"
)

// DirectoryService owns the physical slotting model used by put-away and
// allocation
type DirectoryService struct {
	locations domain.LocationRepository
	products  domain.ProductRepository
	logger    *logging.Logger
}

// NewDirectoryService creates a DirectoryService
func NewDirectoryService(locations domain.LocationRepository, products domain.ProductRepository, logger *logging.Logger) *DirectoryService {
	return &DirectoryService{
		locations: locations,
		products:  products,
		logger:    logger.WithComponent("facility.directory"),
	}
}

// CreateLocationCommand describes a location to create
type CreateLocationCommand struct {
	Code        string            `json:"code" validate:"required"`
	Type        string            `json:"type" validate:"required"`
	Hierarchy   domain.Hierarchy  `json:"hierarchy"`
	Attributes  domain.Attributes `json:"attributes"`
	ForwardPick bool              `json:"forwardPick"`
	Capacity    int               `json:"capacity" validate:"gte=0"`
}

// CreateLocation registers a new location
func (s *DirectoryService) CreateLocation(ctx context.Context, cmd CreateLocationCommand) (*domain.Location, error) {
	existing, err := s.locations.FindByCode(ctx, cmd.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location %s: %w", cmd.Code, err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("location %s already exists", cmd.Code))
	}

	location, err := domain.NewLocation(cmd.Code, domain.LocationType(cmd.Type), cmd.Hierarchy, cmd.Capacity)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	location.Attributes = cmd.Attributes
	location.ForwardPick = cmd.ForwardPick

	if err := s.locations.Save(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to save location %s: %w", cmd.Code, err)
	}

	s.logger.Info("Created location", "code", cmd.Code, "type", cmd.Type, "zone", cmd.Hierarchy.Zone)
	return location, nil
}

// GetLocation returns one location by code
func (s *DirectoryService) GetLocation(ctx context.Context, code string) (*domain.Location, error) {
	location, err := s.locations.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up location %s: %w", code, err)
	}
	if location == nil {
		return nil, errors.ErrNotFoundWithID("location", code)
	}
	return location, nil
}

// FindLocations lists locations matching the filter
func (s *DirectoryService) FindLocations(ctx context.Context, filter domain.LocationFilter) ([]*domain.Location, error) {
	return s.locations.Find(ctx, filter)
}

// CandidatesFor returns active locations that satisfy the product's storage
// requirements, in repository order
func (s *DirectoryService) CandidatesFor(ctx context.Context, sku string, filter domain.LocationFilter) ([]*domain.Location, error) {
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %s: %w", sku, err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", sku)
	}

	filter.ActiveOnly = true
	locations, err := s.locations.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	suitable := make([]*domain.Location, 0, len(locations))
	for _, loc := range locations {
		if loc.SuitableFor(product.Storage) {
			suitable = append(suitable, loc)
		}
	}
	return suitable, nil
}

// ReserveCapacity records quantity units placed at a location
func (s *DirectoryService) ReserveCapacity(ctx context.Context, code string, quantity int) error {
	location, err := s.GetLocation(ctx, code)
	if err != nil {
		return err
	}
	if err := location.ReserveCapacity(quantity); err != nil {
		return errors.ErrValidation(err.Error())
	}
	return s.locations.Save(ctx, location)
}

// ReleaseCapacity records quantity units removed from a location
func (s *DirectoryService) ReleaseCapacity(ctx context.Context, code string, quantity int) error {
	location, err := s.GetLocation(ctx, code)
	if err != nil {
		return err
	}
	if err := location.ReleaseCapacity(quantity); err != nil {
		return errors.ErrValidation(err.Error())
	}
	return s.locations.Save(ctx, location)
}

// CreateProduct registers a product definition
func (s *DirectoryService) CreateProduct(ctx context.Context, product *domain.Product) error {
	existing, err := s.products.FindBySKU(ctx, product.SKU)
	if err != nil {
		return fmt.Errorf("failed to look up product %s: %w", product.SKU, err)
	}
	if existing != nil {
		return errors.ErrConflict(fmt.Sprintf("product %s already exists", product.SKU))
	}
	return s.products.Save(ctx, product)
}

// GetProduct returns one product by SKU
func (s *DirectoryService) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product %s: %w", sku, err)
	}
	if product == nil {
		return nil, errors.ErrNotFoundWithID("product", sku)
	}
	return product, nil
}
