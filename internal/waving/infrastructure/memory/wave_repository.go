package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wms-platform/fulfillment/internal/waving/domain"
)

// WaveRepository is an in-memory adapter used by tests
type WaveRepository struct {
	mu    sync.RWMutex
	waves map[string]*domain.Wave
}

// NewWaveRepository creates an empty repository
func NewWaveRepository() *WaveRepository {
	return &WaveRepository{waves: make(map[string]*domain.Wave)}
}

func (r *WaveRepository) Save(ctx context.Context, wave *domain.Wave) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *wave
	copied.OrderNumbers = append([]string(nil), wave.OrderNumbers...)
	r.waves[wave.WaveID] = &copied
	return nil
}

func (r *WaveRepository) FindByID(ctx context.Context, waveID string) (*domain.Wave, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wave, ok := r.waves[waveID]
	if !ok {
		return nil, nil
	}
	copied := *wave
	copied.OrderNumbers = append([]string(nil), wave.OrderNumbers...)
	return &copied, nil
}

func (r *WaveRepository) FindByStatus(ctx context.Context, status domain.WaveStatus) ([]*domain.Wave, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Wave
	for _, wave := range r.waves {
		if wave.Status == status {
			copied := *wave
			copied.OrderNumbers = append([]string(nil), wave.OrderNumbers...)
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
