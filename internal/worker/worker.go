package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	laborapp "github.com/wms-platform/fulfillment/internal/labor/application"
	labordomain "github.com/wms-platform/fulfillment/internal/labor/domain"
	orapp "github.com/wms-platform/fulfillment/internal/orders/application"
	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	pickapp "github.com/wms-platform/fulfillment/internal/picking/application"
	shipapp "github.com/wms-platform/fulfillment/internal/shipping/application"
	shipdomain "github.com/wms-platform/fulfillment/internal/shipping/domain"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/metrics"
	"github.com/wms-platform/fulfillment/pkg/queue"
)

// Baseline duration estimates dispatched with floor work, in minutes
const (
	pickEstimate        = 15
	putAwayEstimate     = 20
	packEstimate        = 10
	inspectionEstimate  = 30
	maintenanceEstimate = 60
)

// Worker binds the named work queues to the application services. One
// blocking handler runs per queue; failed handlers leave the message
// uncommitted for redelivery.
type Worker struct {
	orders     *orapp.PipelineService
	picking    *pickapp.ExecutorService
	shipping   *shipapp.ShippingService
	dispatcher *laborapp.DispatcherService
	consumer   queue.Consumer
	metrics    *metrics.Metrics
	validate   *validator.Validate
	logger     *logging.Logger
}

// New wires a Worker over the given consumer
func New(
	orders *orapp.PipelineService,
	picking *pickapp.ExecutorService,
	shipping *shipapp.ShippingService,
	dispatcher *laborapp.DispatcherService,
	consumer queue.Consumer,
	m *metrics.Metrics,
	logger *logging.Logger,
) *Worker {
	return &Worker{
		orders:     orders,
		picking:    picking,
		shipping:   shipping,
		dispatcher: dispatcher,
		consumer:   consumer,
		metrics:    m,
		validate:   validator.New(),
		logger:     logger.WithComponent("worker"),
	}
}

// Register subscribes every queue handler. Must be called before Run.
func (w *Worker) Register() {
	w.consumer.Subscribe(queue.Validation, w.instrument(queue.Validation, w.handleValidation))
	w.consumer.Subscribe(queue.Allocation, w.instrument(queue.Allocation, w.handleAllocation))
	w.consumer.Subscribe(queue.Picking, w.instrument(queue.Picking, w.handlePicking))
	w.consumer.Subscribe(queue.PutAway, w.instrument(queue.PutAway, w.handlePutAway))
	w.consumer.Subscribe(queue.Packing, w.instrument(queue.Packing, w.handlePacking))
	w.consumer.Subscribe(queue.Shipping, w.instrument(queue.Shipping, w.handleShipping))
	w.consumer.Subscribe(queue.Returns, w.instrument(queue.Returns, w.handleReturns))
	w.consumer.Subscribe(queue.Maintenance, w.instrument(queue.Maintenance, w.handleMaintenance))
	w.consumer.Subscribe(queue.Exceptions, w.instrument(queue.Exceptions, w.handleException))
}

// Run consumes all registered queues until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker starting", "queues", len(queue.All()))
	return w.consumer.Start(ctx)
}

// instrument wraps a handler with metrics and terminal-failure handling.
// Terminal failures (bad payloads, unknown or mis-stated resources) are
// logged and dropped; anything else is redelivered.
func (w *Worker) instrument(name string, handler queue.Handler) queue.Handler {
	logger := w.logger.WithQueue(name)
	return func(ctx context.Context, msg queue.Message) error {
		start := time.Now()
		err := handler(ctx, msg)
		w.metrics.ObserveHandler(name, start, err)
		if err == nil {
			return nil
		}
		if terminal(err) {
			logger.WithError(err).Warn("dropping message after terminal failure", "messageId", msg.ID)
			return nil
		}
		return err
	}
}

// terminal reports whether retrying the message can never succeed
func terminal(err error) bool {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case errors.CodeValidationError,
		errors.CodeNotFound,
		errors.CodeConflict,
		errors.CodeAlreadyExists,
		errors.CodeNoEligibleCarrier:
		return true
	}
	return false
}

// decode unmarshals and validates one work payload
func (w *Worker) decode(msg queue.Message, payload any) error {
	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return errors.ErrValidation(fmt.Sprintf("malformed payload on %s: %v", msg.Queue, err))
	}
	if err := w.validate.Struct(payload); err != nil {
		return errors.ErrValidation(fmt.Sprintf("invalid payload on %s: %v", msg.Queue, err))
	}
	return nil
}

func (w *Worker) handleValidation(ctx context.Context, msg queue.Message) error {
	var work queue.OrderWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	order, err := w.orders.ValidateOrder(ctx, work.OrderNumber)
	if err != nil {
		return err
	}
	w.metrics.OrdersValidated.WithLabelValues(string(order.Status)).Inc()
	return nil
}

func (w *Worker) handleAllocation(ctx context.Context, msg queue.Message) error {
	var work queue.OrderWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	order, err := w.orders.AllocateOrder(ctx, work.OrderNumber)
	if err != nil {
		return err
	}
	w.metrics.OrdersAllocated.WithLabelValues(string(order.Status)).Inc()
	if order.Status == ordomain.OrderStatusPartiallyAllocated {
		w.metrics.AllocationShortfalls.Inc()
	}
	return nil
}

// handlePicking carries two payload shapes: WaveWork from wave release,
// expanded into pick tasks, and PickWork per generated task, dispatched to
// the floor.
func (w *Worker) handlePicking(ctx context.Context, msg queue.Message) error {
	var wave queue.WaveWork
	if err := json.Unmarshal(msg.Payload, &wave); err == nil && wave.WaveID != "" {
		_, err := w.picking.GeneratePickTasks(ctx, wave.WaveID)
		return err
	}

	var work queue.PickWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	_, err := w.dispatcher.DispatchTask(ctx, work.TaskID, labordomain.TaskPick, "picking", pickEstimate)
	return err
}

func (w *Worker) handlePutAway(ctx context.Context, msg queue.Message) error {
	var work queue.PutAwayWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	_, err := w.dispatcher.DispatchTask(ctx, work.TaskID, labordomain.TaskPutAway, "putaway", putAwayEstimate)
	return err
}

func (w *Worker) handlePacking(ctx context.Context, msg queue.Message) error {
	var work queue.OrderWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	_, err := w.dispatcher.DispatchTask(ctx, work.OrderNumber, labordomain.TaskPack, "packing", packEstimate)
	return err
}

// handleShipping creates the shipment and manifests its labels in one step
func (w *Worker) handleShipping(ctx context.Context, msg queue.Message) error {
	var work queue.OrderWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	shipment, err := w.shipping.CreateShipment(ctx, work.OrderNumber, shipdomain.Capabilities{})
	if err != nil {
		if errors.IsCode(err, errors.CodeAlreadyExists) {
			// redelivered after a partial run; pick up label generation below
			shipment, err = w.shipping.GetOrderShipment(ctx, work.OrderNumber)
		}
		if err != nil {
			return err
		}
	} else {
		w.metrics.ShipmentsCreated.WithLabelValues(shipment.CarrierID).Inc()
	}
	if shipment == nil {
		return errors.ErrNotFoundWithID("shipment", work.OrderNumber)
	}
	if shipment.Status != shipdomain.ShipmentStatusCreated {
		return nil
	}
	_, err = w.shipping.GenerateShippingLabels(ctx, shipment.ShipmentID)
	return err
}

func (w *Worker) handleReturns(ctx context.Context, msg queue.Message) error {
	var work queue.ReturnWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	_, err := w.dispatcher.DispatchTask(ctx, work.RMANumber, labordomain.TaskReceiving, "receiving", inspectionEstimate)
	return err
}

func (w *Worker) handleMaintenance(ctx context.Context, msg queue.Message) error {
	var work queue.MaintenanceWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	_, err := w.dispatcher.DispatchTask(ctx, work.EquipmentID, labordomain.TaskMaintenance, "maintenance", maintenanceEstimate)
	return err
}

// handleException surfaces queued exceptions for human review
func (w *Worker) handleException(ctx context.Context, msg queue.Message) error {
	var work queue.ExceptionWork
	if err := w.decode(msg, &work); err != nil {
		return err
	}
	w.logger.WithQueue(queue.Exceptions).Warn("exception raised",
		"kind", work.Kind,
		"reference", work.Reference,
		"detail", work.Detail)
	return nil
}
