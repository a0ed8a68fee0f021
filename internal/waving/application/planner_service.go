package application

import (
	"context"

	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/internal/waving/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// PlanWaveCriteria narrows the order selection for a wave
type PlanWaveCriteria struct {
	Priority  ordomain.Priority
	Carrier   string
	MaxOrders int
}

// PlannerService plans and releases picking waves. Planning is synchronous
// relative to the wave record: one PlanWave call owns its wave from read to
// write.
type PlannerService struct {
	waves     domain.WaveRepository
	orders    ordomain.OrderRepository
	queues    queue.Publisher
	publisher events.Publisher
	clock     clock.Clock
	logger    *logging.Logger
}

// NewPlannerService wires the wave planner
func NewPlannerService(
	waves domain.WaveRepository,
	orders ordomain.OrderRepository,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *PlannerService {
	return &PlannerService{
		waves:     waves,
		orders:    orders,
		queues:    queues,
		publisher: publisher,
		clock:     clk,
		logger:    logger.WithComponent("waving.planner"),
	}
}

// CreateWave initializes an empty wave with a strategy tag
func (s *PlannerService) CreateWave(ctx context.Context, waveID string, strategy domain.Strategy) (*domain.Wave, error) {
	existing, err := s.waves.FindByID(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrAlreadyExists("wave", waveID)
	}

	wave, err := domain.NewWave(waveID, strategy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	wave.CreatedAt = s.clock.Now()
	if err := s.waves.Save(ctx, wave); err != nil {
		return nil, err
	}
	s.logger.Info("wave created", "waveId", waveID, "strategy", string(strategy))
	return wave, nil
}

// GetWave looks up a wave by id
func (s *PlannerService) GetWave(ctx context.Context, waveID string) (*domain.Wave, error) {
	wave, err := s.waves.FindByID(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if wave == nil {
		return nil, errors.ErrNotFoundWithID("wave", waveID)
	}
	return wave, nil
}

// PlanWave selects allocated orders matching the criteria, applies the
// wave's strategy ordering, caps the selection, stamps the orders released
// and writes the selection and metrics back into the wave
func (s *PlannerService) PlanWave(ctx context.Context, waveID string, criteria PlanWaveCriteria) (*domain.Wave, error) {
	wave, err := s.GetWave(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if wave.Status != domain.WaveStatusPlanning {
		return nil, errors.ErrConflict("wave " + waveID + " is not in planning")
	}

	candidates, err := s.orders.Find(ctx, ordomain.OrderFilter{
		Status:   ordomain.OrderStatusAllocated,
		Priority: criteria.Priority,
		Carrier:  criteria.Carrier,
	})
	if err != nil {
		return nil, err
	}

	selected := applyStrategy(wave.Strategy, candidates)
	if criteria.MaxOrders > 0 && len(selected) > criteria.MaxOrders {
		selected = selected[:criteria.MaxOrders]
	}

	orderNumbers := make([]string, 0, len(selected))
	for _, order := range selected {
		if err := order.Release(waveID); err != nil {
			return nil, errors.ErrConflict(err.Error())
		}
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
		orderNumbers = append(orderNumbers, order.OrderNumber)
	}

	metrics := waveMetrics(selected)
	if err := wave.AssignOrders(orderNumbers, metrics); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.waves.Save(ctx, wave); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.WavePlannedEvent{
		WaveID:    waveID,
		Strategy:  wave.Strategy,
		Orders:    metrics.Orders,
		Units:     metrics.Units,
		Timestamp: s.clock.Now(),
	})
	s.logger.Info("wave planned",
		"waveId", waveID,
		"orders", metrics.Orders,
		"units", metrics.Units,
		"estimatedMinutes", metrics.EstimatedPickMinutes)
	return wave, nil
}

// ReleaseWave hands the wave to the picking stage
func (s *PlannerService) ReleaseWave(ctx context.Context, waveID string) (*domain.Wave, error) {
	wave, err := s.GetWave(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if err := wave.Release(s.clock.Now()); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.waves.Save(ctx, wave); err != nil {
		return nil, err
	}

	if err := s.queues.Publish(ctx, queue.Picking, queue.WaveWork{WaveID: waveID}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue wave for picking", "waveId", waveID)
	}
	s.publisher.Publish(ctx, domain.WaveReleasedEvent{
		WaveID:    waveID,
		Orders:    len(wave.OrderNumbers),
		Timestamp: s.clock.Now(),
	})
	s.logger.Info("wave released", "waveId", waveID, "orders", len(wave.OrderNumbers))
	return wave, nil
}

// StartPicking records that the wave's tasks are being worked
func (s *PlannerService) StartPicking(ctx context.Context, waveID string) error {
	wave, err := s.GetWave(ctx, waveID)
	if err != nil {
		return err
	}
	if err := wave.StartPicking(); err != nil {
		return errors.ErrConflict(err.Error())
	}
	return s.waves.Save(ctx, wave)
}

// CompleteWave closes the wave once every order in it is picked or beyond
func (s *PlannerService) CompleteWave(ctx context.Context, waveID string) (*domain.Wave, error) {
	wave, err := s.GetWave(ctx, waveID)
	if err != nil {
		return nil, err
	}

	for _, orderNumber := range wave.OrderNumbers {
		order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if order == nil {
			continue
		}
		switch order.Status {
		case ordomain.OrderStatusPicked, ordomain.OrderStatusPacked,
			ordomain.OrderStatusShipped, ordomain.OrderStatusDelivered,
			ordomain.OrderStatusCancelled:
		default:
			return nil, errors.ErrConflict("order " + orderNumber + " is not picked yet")
		}
	}

	if err := wave.Complete(s.clock.Now()); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.waves.Save(ctx, wave); err != nil {
		return nil, err
	}
	s.publisher.Publish(ctx, domain.WaveCompletedEvent{WaveID: waveID, Timestamp: s.clock.Now()})
	s.logger.Info("wave completed", "waveId", waveID)
	return wave, nil
}

// CancelWave aborts a wave and returns its released orders to the allocated
// pool
func (s *PlannerService) CancelWave(ctx context.Context, waveID string) (*domain.Wave, error) {
	wave, err := s.GetWave(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if err := wave.Cancel(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}

	for _, orderNumber := range wave.OrderNumbers {
		order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if order == nil || order.Status != ordomain.OrderStatusReleased {
			continue
		}
		if err := order.ReturnToAllocated(); err != nil {
			continue
		}
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, err
		}
	}

	if err := s.waves.Save(ctx, wave); err != nil {
		return nil, err
	}
	s.logger.Info("wave cancelled", "waveId", waveID)
	return wave, nil
}
