package domain

import (
	"context"
	"time"
)

// OrderFilter narrows order queries
type OrderFilter struct {
	Status     OrderStatus
	Statuses   []OrderStatus
	Priority   Priority
	CustomerID string
	WaveID     string
	Carrier    string
	OrderedTo  *time.Time
	Limit      int
}

// OrderRepository persists order aggregates
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	Find(ctx context.Context, filter OrderFilter) ([]*Order, error)
	Delete(ctx context.Context, orderNumber string) error
}
