package domain

import "context"

// PickTaskRepository persists pick tasks
type PickTaskRepository interface {
	Save(ctx context.Context, task *PickTask) error
	FindByTaskID(ctx context.Context, taskID string) (*PickTask, error)
	FindByWave(ctx context.Context, waveID string) ([]*PickTask, error)
	FindByOrder(ctx context.Context, orderNumber string) ([]*PickTask, error)
}

// PickExceptionRepository persists pick shortfall records
type PickExceptionRepository interface {
	Save(ctx context.Context, exception *PickException) error
	FindOpen(ctx context.Context) ([]*PickException, error)
}
