package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/orders/domain"
)

// OrderRepository is an in-memory adapter used by tests
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepository creates an empty repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	copied.Lines = append([]domain.Line(nil), order.Lines...)
	for i := range copied.Lines {
		copied.Lines[i].AllocationIDs = append([]string(nil), order.Lines[i].AllocationIDs...)
	}
	r.orders[order.OrderNumber] = &copied
	return nil
}

func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	copied := *order
	copied.Lines = append([]domain.Line(nil), order.Lines...)
	return &copied, nil
}

func (r *OrderRepository) Find(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Order
	for _, order := range r.orders {
		if !matches(order, filter) {
			continue
		}
		copied := *order
		copied.Lines = append([]domain.Line(nil), order.Lines...)
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OrderDate.Before(result[j].OrderDate)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *OrderRepository) Delete(ctx context.Context, orderNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, orderNumber)
	return nil
}

func matches(order *domain.Order, filter domain.OrderFilter) bool {
	if filter.Status != "" && order.Status != filter.Status {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if order.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Priority != "" && order.Priority != filter.Priority {
		return false
	}
	if filter.CustomerID != "" && order.Customer.CustomerID != filter.CustomerID {
		return false
	}
	if filter.WaveID != "" && order.WaveID != filter.WaveID {
		return false
	}
	if filter.Carrier != "" && order.Carrier != filter.Carrier {
		return false
	}
	if filter.OrderedTo != nil && order.OrderDate.After(*filter.OrderedTo) {
		return false
	}
	return true
}
