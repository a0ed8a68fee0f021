package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	invdomain "github.com/wms-platform/fulfillment/internal/inventory/domain"
	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/internal/picking/domain"
	wavedomain "github.com/wms-platform/fulfillment/internal/waving/domain"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// InventoryLedger is the slice of the ledger the executor needs
type InventoryLedger interface {
	GetAllocationsByOrder(ctx context.Context, orderID string) ([]*invdomain.Allocation, error)
	ConsumeAllocation(ctx context.Context, allocationID string, quantity int) error
}

// ExecutorService expands waves into pick tasks and records pick results
type ExecutorService struct {
	tasks      domain.PickTaskRepository
	exceptions domain.PickExceptionRepository
	orders     ordomain.OrderRepository
	waves      wavedomain.WaveRepository
	ledger     InventoryLedger
	queues     queue.Publisher
	publisher  events.Publisher
	clock      clock.Clock
	logger     *logging.Logger
}

// NewExecutorService wires the pick executor
func NewExecutorService(
	tasks domain.PickTaskRepository,
	exceptions domain.PickExceptionRepository,
	orders ordomain.OrderRepository,
	waves wavedomain.WaveRepository,
	ledger InventoryLedger,
	queues queue.Publisher,
	publisher events.Publisher,
	clk clock.Clock,
	logger *logging.Logger,
) *ExecutorService {
	return &ExecutorService{
		tasks:      tasks,
		exceptions: exceptions,
		orders:     orders,
		waves:      waves,
		ledger:     ledger,
		queues:     queues,
		publisher:  publisher,
		clock:      clk,
		logger:     logger.WithComponent("picking.executor"),
	}
}

// GeneratePickTasks expands each order in a released wave into one pick task
// per live allocation, runs the path optimizer over the whole wave, and
// pushes one message per task onto the picking queue. Safe to call twice:
// a wave that already has tasks returns them unchanged.
func (s *ExecutorService) GeneratePickTasks(ctx context.Context, waveID string) ([]*domain.PickTask, error) {
	wave, err := s.waves.FindByID(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if wave == nil {
		return nil, errors.ErrNotFoundWithID("wave", waveID)
	}

	existing, err := s.tasks.FindByWave(ctx, waveID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.logger.Info("pick tasks already generated", "waveId", waveID, "tasks", len(existing))
		return existing, nil
	}
	if wave.Status != wavedomain.WaveStatusReleased {
		return nil, errors.ErrConflict("wave " + waveID + " is not released")
	}

	var tasks []*domain.PickTask
	for _, orderNumber := range wave.OrderNumbers {
		order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, errors.ErrNotFoundWithID("order", orderNumber)
		}
		if order.Status == ordomain.OrderStatusCancelled {
			s.logger.Info("skipping pick generation for cancelled order",
				"waveId", waveID, "orderNumber", orderNumber)
			continue
		}

		allocations, err := s.ledger.GetAllocationsByOrder(ctx, orderNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to load allocations for %s: %w", orderNumber, err)
		}
		for _, allocation := range allocations {
			if allocation.Released {
				continue
			}
			tasks = append(tasks, domain.NewPickTask(
				"PT-"+uuid.NewString()[:8], waveID, orderNumber,
				allocation.SKU, allocation.AllocationID,
				allocation.LocationCode, allocation.Quantity))
		}

		if order.Status == ordomain.OrderStatusReleased {
			if err := order.StartPicking(); err != nil {
				return nil, errors.ErrConflict(err.Error())
			}
			if err := s.orders.Save(ctx, order); err != nil {
				return nil, err
			}
		}
	}

	tasks = OptimizePickPath(tasks)
	for _, task := range tasks {
		if err := s.tasks.Save(ctx, task); err != nil {
			return nil, err
		}
		if err := s.queues.Publish(ctx, queue.Picking, queue.PickWork{TaskID: task.TaskID}); err != nil {
			s.logger.WithError(err).Warn("failed to enqueue pick task",
				"taskId", task.TaskID)
		}
	}

	if err := wave.StartPicking(); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.waves.Save(ctx, wave); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, domain.PickTasksGeneratedEvent{
		WaveID:    waveID,
		TaskCount: len(tasks),
		Timestamp: s.clock.Now(),
	})
	s.logger.Info("pick tasks generated", "waveId", waveID, "tasks", len(tasks))
	return tasks, nil
}

// GetPickTask looks a task up by id
func (s *ExecutorService) GetPickTask(ctx context.Context, taskID string) (*domain.PickTask, error) {
	task, err := s.tasks.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.ErrNotFoundWithID("pick task", taskID)
	}
	return task, nil
}

// AssignPickTask hands a pending task to a picker
func (s *ExecutorService) AssignPickTask(ctx context.Context, taskID, staffID string) (*domain.PickTask, error) {
	task, err := s.GetPickTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := task.Assign(staffID); err != nil {
		return nil, errors.ErrConflict(err.Error())
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CompletePickTask records the picked quantity against a task. An exact pick
// completes the task; a short pick opens an exception and leaves the order
// line short with no automatic re-pick. Picked stock is consumed from its
// allocation either way. When the last line of an order reaches its allocated
// quantity the order moves to picked and is enqueued for packing.
func (s *ExecutorService) CompletePickTask(ctx context.Context, taskID string, picked int) (*domain.PickTask, error) {
	task, err := s.GetPickTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := task.Complete(picked, now); err != nil {
		switch err {
		case domain.ErrOverPick:
			return nil, errors.ErrValidation(fmt.Sprintf(
				"picked %d exceeds required %d on task %s", picked, task.RequiredQuantity, taskID))
		default:
			return nil, errors.ErrConflict(err.Error())
		}
	}

	if picked > 0 {
		if err := s.ledger.ConsumeAllocation(ctx, task.AllocationID, picked); err != nil {
			return nil, fmt.Errorf("failed to consume allocation %s: %w", task.AllocationID, err)
		}
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	if task.Status == domain.PickTaskStatusException {
		if err := s.openException(ctx, task); err != nil {
			return nil, err
		}
	} else {
		s.publisher.Publish(ctx, domain.PickCompletedEvent{
			TaskID:      task.TaskID,
			OrderNumber: task.OrderNumber,
			SKU:         task.SKU,
			Picked:      picked,
			Timestamp:   now,
		})
	}

	if err := s.rollUpOrder(ctx, task, picked); err != nil {
		return nil, err
	}
	return task, nil
}

// GetWaveTasks returns a wave's tasks in pick-sequence order
func (s *ExecutorService) GetWaveTasks(ctx context.Context, waveID string) ([]*domain.PickTask, error) {
	return s.tasks.FindByWave(ctx, waveID)
}

// GetOpenExceptions lists unresolved pick shortfalls
func (s *ExecutorService) GetOpenExceptions(ctx context.Context) ([]*domain.PickException, error) {
	return s.exceptions.FindOpen(ctx)
}

func (s *ExecutorService) openException(ctx context.Context, task *domain.PickTask) error {
	exception := domain.NewPickException("PEX-"+uuid.NewString()[:8], task)
	if err := s.exceptions.Save(ctx, exception); err != nil {
		return err
	}

	if err := s.queues.Publish(ctx, queue.Exceptions, queue.ExceptionWork{
		Kind:      queue.ExceptionShortPick,
		Reference: task.TaskID,
		Detail:    fmt.Sprintf("%s short by %d at %s", task.SKU, task.Shortfall(), task.LocationCode),
	}); err != nil {
		s.logger.WithError(err).Warn("failed to enqueue pick exception", "taskId", task.TaskID)
	}

	s.publisher.Publish(ctx, domain.PickExceptionEvent{
		ExceptionID: exception.ExceptionID,
		TaskID:      task.TaskID,
		OrderNumber: task.OrderNumber,
		SKU:         task.SKU,
		Shortfall:   exception.Shortfall,
		Timestamp:   s.clock.Now(),
	})
	s.logger.Warn("pick exception opened",
		"taskId", task.TaskID,
		"sku", task.SKU,
		"shortfall", exception.Shortfall)
	return nil
}

func (s *ExecutorService) rollUpOrder(ctx context.Context, task *domain.PickTask, picked int) error {
	order, err := s.orders.FindByOrderNumber(ctx, task.OrderNumber)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.ErrNotFoundWithID("order", task.OrderNumber)
	}

	if err := order.RecordPick(task.SKU, picked); err != nil {
		return errors.ErrConflict(err.Error())
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return err
	}

	if order.Status == ordomain.OrderStatusPicked {
		if err := s.queues.Publish(ctx, queue.Packing, queue.OrderWork{OrderNumber: order.OrderNumber}); err != nil {
			s.logger.WithError(err).Warn("failed to enqueue order for packing",
				"orderNumber", order.OrderNumber)
		}
		s.logger.Info("order fully picked", "orderNumber", order.OrderNumber)
	}
	return nil
}
