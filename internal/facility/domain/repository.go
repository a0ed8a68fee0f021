package domain

import "context"

// LocationFilter narrows location queries. Zero values match everything.
type LocationFilter struct {
	Zone        string
	Type        LocationType
	ForwardPick *bool
	ActiveOnly  bool
}

// LocationRepository defines the persistence port for locations
type LocationRepository interface {
	Save(ctx context.Context, location *Location) error
	FindByCode(ctx context.Context, code string) (*Location, error)
	Find(ctx context.Context, filter LocationFilter) ([]*Location, error)
}

// ProductRepository defines the persistence port for products
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindBySKU(ctx context.Context, sku string) (*Product, error)
}
