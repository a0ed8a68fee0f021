package domain

import "context"

// WaveRepository persists wave aggregates
type WaveRepository interface {
	Save(ctx context.Context, wave *Wave) error
	FindByID(ctx context.Context, waveID string) (*Wave, error)
	FindByStatus(ctx context.Context, status WaveStatus) ([]*Wave, error)
}
