package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/facility/domain"
)

// LocationRepository is an in-memory LocationRepository for tests and
// single-node use
type LocationRepository struct {
	mu        sync.RWMutex
	locations map[string]*domain.Location
}

// NewLocationRepository creates an empty repository
func NewLocationRepository() *LocationRepository {
	return &LocationRepository{locations: make(map[string]*domain.Location)}
}

func (r *LocationRepository) Save(ctx context.Context, location *domain.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *location
	r.locations[location.Code] = &copied
	return nil
}

func (r *LocationRepository) FindByCode(ctx context.Context, code string) (*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if loc, ok := r.locations[code]; ok {
		copied := *loc
		return &copied, nil
	}
	return nil, nil
}

func (r *LocationRepository) Find(ctx context.Context, filter domain.LocationFilter) ([]*domain.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Location
	for _, loc := range r.locations {
		if filter.Zone != "" && loc.Hierarchy.Zone != filter.Zone {
			continue
		}
		if filter.Type != "" && loc.Type != filter.Type {
			continue
		}
		if filter.ForwardPick != nil && loc.ForwardPick != *filter.ForwardPick {
			continue
		}
		if filter.ActiveOnly && !loc.Active {
			continue
		}
		copied := *loc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ProductRepository is an in-memory ProductRepository
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

// NewProductRepository creates an empty repository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]*domain.Product)}
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *product
	r.products[product.SKU] = &copied
	return nil
}

func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.products[sku]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}
