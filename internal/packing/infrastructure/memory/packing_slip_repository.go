package memory

import (
	"context"
	"sync"

	"github.com/wms-platform/fulfillment/internal/packing/domain"
)

// PackingSlipRepository is an in-memory adapter used by tests
type PackingSlipRepository struct {
	mu    sync.RWMutex
	slips map[string]*domain.PackingSlip
}

// NewPackingSlipRepository creates an empty repository
func NewPackingSlipRepository() *PackingSlipRepository {
	return &PackingSlipRepository{slips: make(map[string]*domain.PackingSlip)}
}

func (r *PackingSlipRepository) Save(ctx context.Context, slip *domain.PackingSlip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slips[slip.SlipNumber] = copySlip(slip)
	return nil
}

func (r *PackingSlipRepository) FindBySlipNumber(ctx context.Context, slipNumber string) (*domain.PackingSlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slip, ok := r.slips[slipNumber]
	if !ok {
		return nil, nil
	}
	return copySlip(slip), nil
}

func (r *PackingSlipRepository) FindByOrder(ctx context.Context, orderNumber string) (*domain.PackingSlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, slip := range r.slips {
		if slip.OrderNumber == orderNumber {
			return copySlip(slip), nil
		}
	}
	return nil, nil
}

func copySlip(slip *domain.PackingSlip) *domain.PackingSlip {
	copied := *slip
	copied.Packages = make([]domain.Package, len(slip.Packages))
	for i, pkg := range slip.Packages {
		copied.Packages[i] = pkg
		copied.Packages[i].Contents = append([]domain.PackedItem(nil), pkg.Contents...)
	}
	return &copied
}
