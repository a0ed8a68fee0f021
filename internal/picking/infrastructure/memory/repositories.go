package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/picking/domain"
)

// PickTaskRepository is an in-memory adapter used by tests
type PickTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.PickTask
}

// NewPickTaskRepository creates an empty repository
func NewPickTaskRepository() *PickTaskRepository {
	return &PickTaskRepository{tasks: make(map[string]*domain.PickTask)}
}

func (r *PickTaskRepository) Save(ctx context.Context, task *domain.PickTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.TaskID] = &copied
	return nil
}

func (r *PickTaskRepository) FindByTaskID(ctx context.Context, taskID string) (*domain.PickTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (r *PickTaskRepository) FindByWave(ctx context.Context, waveID string) ([]*domain.PickTask, error) {
	return r.find(func(t *domain.PickTask) bool { return t.WaveID == waveID })
}

func (r *PickTaskRepository) FindByOrder(ctx context.Context, orderNumber string) ([]*domain.PickTask, error) {
	return r.find(func(t *domain.PickTask) bool { return t.OrderNumber == orderNumber })
}

func (r *PickTaskRepository) find(match func(*domain.PickTask) bool) ([]*domain.PickTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.PickTask
	for _, task := range r.tasks {
		if match(task) {
			copied := *task
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PickSequence < result[j].PickSequence
	})
	return result, nil
}

// PickExceptionRepository is an in-memory adapter used by tests
type PickExceptionRepository struct {
	mu         sync.RWMutex
	exceptions map[string]*domain.PickException
}

// NewPickExceptionRepository creates an empty repository
func NewPickExceptionRepository() *PickExceptionRepository {
	return &PickExceptionRepository{exceptions: make(map[string]*domain.PickException)}
}

func (r *PickExceptionRepository) Save(ctx context.Context, exception *domain.PickException) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *exception
	r.exceptions[exception.ExceptionID] = &copied
	return nil
}

func (r *PickExceptionRepository) FindOpen(ctx context.Context) ([]*domain.PickException, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.PickException
	for _, exception := range r.exceptions {
		if !exception.Resolved {
			copied := *exception
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
