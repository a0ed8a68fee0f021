package domain

import "context"

// RMARepository persists return authorizations
type RMARepository interface {
	Save(ctx context.Context, rma *RMA) error
	FindByRMANumber(ctx context.Context, rmaNumber string) (*RMA, error)
	FindByOrder(ctx context.Context, orderNumber string) ([]*RMA, error)
}
