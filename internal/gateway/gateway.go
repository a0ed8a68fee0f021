package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	facapp "github.com/wms-platform/fulfillment/internal/facility/application"
	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	laborapp "github.com/wms-platform/fulfillment/internal/labor/application"
	orapp "github.com/wms-platform/fulfillment/internal/orders/application"
	packapp "github.com/wms-platform/fulfillment/internal/packing/application"
	pickapp "github.com/wms-platform/fulfillment/internal/picking/application"
	recapp "github.com/wms-platform/fulfillment/internal/receiving/application"
	retapp "github.com/wms-platform/fulfillment/internal/returns/application"
	shipapp "github.com/wms-platform/fulfillment/internal/shipping/application"
	waveapp "github.com/wms-platform/fulfillment/internal/waving/application"
	"github.com/wms-platform/fulfillment/pkg/errors"
	"github.com/wms-platform/fulfillment/pkg/logging"
)

// Gateway exposes the operator-facing HTTP surface of the engine. Pipeline
// progression itself runs on the work queues; these endpoints cover the
// operations a person or upstream system initiates.
type Gateway struct {
	directory  *facapp.DirectoryService
	ledger     *invapp.LedgerService
	orders     *orapp.PipelineService
	receiving  *recapp.ReceivingService
	planner    *waveapp.PlannerService
	picking    *pickapp.ExecutorService
	packing    *packapp.PackingService
	shipping   *shipapp.ShippingService
	returns    *retapp.ReturnsService
	dispatcher *laborapp.DispatcherService
	logger     *logging.Logger
}

// New wires the gateway over the application services
func New(
	directory *facapp.DirectoryService,
	ledger *invapp.LedgerService,
	orders *orapp.PipelineService,
	receiving *recapp.ReceivingService,
	planner *waveapp.PlannerService,
	picking *pickapp.ExecutorService,
	packing *packapp.PackingService,
	shipping *shipapp.ShippingService,
	returns *retapp.ReturnsService,
	dispatcher *laborapp.DispatcherService,
	logger *logging.Logger,
) *Gateway {
	return &Gateway{
		directory:  directory,
		ledger:     ledger,
		orders:     orders,
		receiving:  receiving,
		planner:    planner,
		picking:    picking,
		packing:    packing,
		shipping:   shipping,
		returns:    returns,
		dispatcher: dispatcher,
		logger:     logger.WithComponent("gateway"),
	}
}

// Register mounts every route under /api/v1 on the given router
func (g *Gateway) Register(router gin.IRouter) {
	v1 := router.Group("/api/v1")

	v1.POST("/locations", g.createLocation)
	v1.GET("/locations/:code", g.getLocation)
	v1.POST("/products", g.createProduct)
	v1.GET("/products/:sku", g.getProduct)

	v1.GET("/inventory/:sku", g.getInventory)
	v1.POST("/inventory/adjustments", g.adjustInventory)
	v1.POST("/inventory/holds", g.holdInventory)
	v1.POST("/inventory/holds/release", g.releaseHold)
	v1.POST("/inventory/lots", g.createLot)
	v1.GET("/inventory/lots/expiring", g.getExpiringLots)
	v1.POST("/inventory/lots/:lotNumber/quality", g.updateLotQuality)
	v1.GET("/inventory/:sku/lots", g.getLotsByProduct)

	v1.POST("/purchase-orders", g.createPurchaseOrder)
	v1.GET("/purchase-orders/:poNumber", g.getPurchaseOrder)
	v1.POST("/asns", g.processASN)
	v1.POST("/asns/:asnNumber/receive", g.startReceiving)
	v1.POST("/receipts/:receiptNumber/items", g.processReceivedItem)
	v1.POST("/receipts/:receiptNumber/complete", g.completeReceiving)
	v1.POST("/putaway-tasks/:taskId/complete", g.completePutAway)

	v1.POST("/orders", g.createOrder)
	v1.GET("/orders/:orderNumber", g.getOrder)
	v1.POST("/orders/:orderNumber/cancel", g.cancelOrder)
	v1.GET("/orders/:orderNumber/packing-slip", g.getPackingSlip)
	v1.GET("/orders/:orderNumber/shipment", g.getOrderShipment)
	v1.GET("/orders/:orderNumber/returns", g.getOrderReturns)

	v1.POST("/waves", g.createWave)
	v1.GET("/waves/:waveId", g.getWave)
	v1.POST("/waves/:waveId/plan", g.planWave)
	v1.POST("/waves/:waveId/release", g.releaseWave)
	v1.POST("/waves/:waveId/complete", g.completeWave)
	v1.POST("/waves/:waveId/cancel", g.cancelWave)
	v1.GET("/waves/:waveId/tasks", g.getWaveTasks)

	v1.POST("/pick-tasks/:taskId/assign", g.assignPickTask)
	v1.POST("/pick-tasks/:taskId/complete", g.completePickTask)
	v1.GET("/pick-exceptions", g.getPickExceptions)

	v1.POST("/packing-slips", g.packOrder)

	v1.POST("/carriers", g.registerCarrier)
	v1.POST("/carriers/:carrierId/deliveries", g.recordCarrierDelivery)
	v1.GET("/shipments/:shipmentId", g.getShipment)
	v1.POST("/shipments/:shipmentId/tracking", g.updateTracking)

	v1.POST("/returns", g.authorizeReturn)
	v1.GET("/returns/:rmaNumber", g.getRMA)
	v1.POST("/returns/:rmaNumber/receive", g.receiveReturn)

	v1.POST("/staff", g.registerStaff)
	v1.GET("/staff/:staffId", g.getStaffMember)
	v1.POST("/equipment", g.registerEquipment)
	v1.GET("/equipment/:equipmentId", g.getEquipment)
	v1.POST("/equipment/:equipmentId/maintenance", g.scheduleMaintenance)
	v1.POST("/equipment/:equipmentId/maintenance/complete", g.completeMaintenance)
	v1.POST("/assignments", g.assignTask)
	v1.POST("/assignments/:assignmentId/complete", g.completeAssignment)
	v1.POST("/assignments/:assignmentId/cancel", g.cancelAssignment)
}

// respondError maps an application error onto an HTTP status
func (g *Gateway) respondError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		g.logger.WithError(err).Error("request failed", "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"code": errors.CodeInternalError, "error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeConflict, errors.CodeAlreadyExists, errors.CodeResourceBusy:
		status = http.StatusConflict
	case errors.CodeInsufficientInventory, errors.CodeNoEligibleCarrier:
		status = http.StatusUnprocessableEntity
	default:
		g.logger.WithError(err).Error("request failed", "path", c.FullPath())
	}
	body := gin.H{"code": appErr.Code, "error": appErr.Message}
	if len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": errors.CodeValidationError, "error": err.Error()})
}
