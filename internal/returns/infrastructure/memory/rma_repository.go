package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/returns/domain"
)

// RMARepository is an in-memory adapter used by tests
type RMARepository struct {
	mu   sync.RWMutex
	rmas map[string]*domain.RMA
}

// NewRMARepository creates an empty repository
func NewRMARepository() *RMARepository {
	return &RMARepository{rmas: make(map[string]*domain.RMA)}
}

func (r *RMARepository) Save(ctx context.Context, rma *domain.RMA) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rmas[rma.RMANumber] = copyRMA(rma)
	return nil
}

func (r *RMARepository) FindByRMANumber(ctx context.Context, rmaNumber string) (*domain.RMA, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rma, ok := r.rmas[rmaNumber]
	if !ok {
		return nil, nil
	}
	return copyRMA(rma), nil
}

func (r *RMARepository) FindByOrder(ctx context.Context, orderNumber string) ([]*domain.RMA, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.RMA
	for _, rma := range r.rmas {
		if rma.OrderNumber == orderNumber {
			result = append(result, copyRMA(rma))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func copyRMA(rma *domain.RMA) *domain.RMA {
	copied := *rma
	copied.Lines = append([]domain.RMALine(nil), rma.Lines...)
	copied.Received = append([]domain.ReceivedLine(nil), rma.Received...)
	return &copied
}
