package domain

import "context"

// PackingSlipRepository persists packing slips
type PackingSlipRepository interface {
	Save(ctx context.Context, slip *PackingSlip) error
	FindBySlipNumber(ctx context.Context, slipNumber string) (*PackingSlip, error)
	FindByOrder(ctx context.Context, orderNumber string) (*PackingSlip, error)
}
