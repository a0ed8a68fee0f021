package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	facapp "github.com/wms-platform/fulfillment/internal/facility/application"
	facmemory "github.com/wms-platform/fulfillment/internal/facility/infrastructure/memory"
	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invmemory "github.com/wms-platform/fulfillment/internal/inventory/infrastructure/memory"
	laborapp "github.com/wms-platform/fulfillment/internal/labor/application"
	labormemory "github.com/wms-platform/fulfillment/internal/labor/infrastructure/memory"
	orapp "github.com/wms-platform/fulfillment/internal/orders/application"
	ormemory "github.com/wms-platform/fulfillment/internal/orders/infrastructure/memory"
	packapp "github.com/wms-platform/fulfillment/internal/packing/application"
	packmemory "github.com/wms-platform/fulfillment/internal/packing/infrastructure/memory"
	pickapp "github.com/wms-platform/fulfillment/internal/picking/application"
	pickmemory "github.com/wms-platform/fulfillment/internal/picking/infrastructure/memory"
	recapp "github.com/wms-platform/fulfillment/internal/receiving/application"
	recmemory "github.com/wms-platform/fulfillment/internal/receiving/infrastructure/memory"
	retapp "github.com/wms-platform/fulfillment/internal/returns/application"
	retmemory "github.com/wms-platform/fulfillment/internal/returns/infrastructure/memory"
	shipapp "github.com/wms-platform/fulfillment/internal/shipping/application"
	shipmemory "github.com/wms-platform/fulfillment/internal/shipping/infrastructure/memory"
	waveapp "github.com/wms-platform/fulfillment/internal/waving/application"
	wavememory "github.com/wms-platform/fulfillment/internal/waving/infrastructure/memory"
	"github.com/wms-platform/fulfillment/pkg/blob"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/queue"
	"github.com/wms-platform/fulfillment/pkg/resilience"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.New(logging.DefaultConfig("test"))
	clk := clock.NewFake(time.Date(2026, 3, 20, 8, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()
	queues := queue.NewMemory(64)
	labels := blob.NewMemory()

	orderRepo := ormemory.NewOrderRepository()
	waveRepo := wavememory.NewWaveRepository()
	slipRepo := packmemory.NewPackingSlipRepository()

	directory := facapp.NewDirectoryService(
		facmemory.NewLocationRepository(), facmemory.NewProductRepository(), logger)
	ledger := invapp.NewLedgerService(
		invmemory.NewRecordRepository(),
		invmemory.NewTransactionRepository(),
		invmemory.NewAllocationRepository(),
		invmemory.NewLotRepository(),
		recorder, clk, logger,
	)
	orders := orapp.NewPipelineService(orderRepo, ledger, queues, recorder, clk, logger)
	receiving := recapp.NewReceivingService(
		recmemory.NewPurchaseOrderRepository(),
		recmemory.NewASNRepository(),
		recmemory.NewDockAppointmentRepository(),
		recmemory.NewReceiptRepository(),
		recmemory.NewReceivingTaskRepository(),
		recmemory.NewDiscrepancyRepository(),
		recmemory.NewPutAwayTaskRepository(),
		ledger, directory, queues, recorder, clk, logger,
	)
	planner := waveapp.NewPlannerService(waveRepo, orderRepo, queues, recorder, clk, logger)
	picking := pickapp.NewExecutorService(
		pickmemory.NewPickTaskRepository(),
		pickmemory.NewPickExceptionRepository(),
		orderRepo, waveRepo, ledger, queues, recorder, clk, logger,
	)
	packing := packapp.NewPackingService(slipRepo, orderRepo, queues, recorder, clk, logger)
	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("label-storage"), logger)
	shipping := shipapp.NewShippingService(
		shipmemory.NewCarrierRepository(),
		shipmemory.NewShipmentRepository(),
		slipRepo, orderRepo, labels, breaker, recorder, clk, logger,
	)
	returns := retapp.NewReturnsService(retmemory.NewRMARepository(), orderRepo, ledger, labels,
		queues, recorder, clk, logger)
	dispatcher := laborapp.NewDispatcherService(
		labormemory.NewStaffRepository(),
		labormemory.NewEquipmentRepository(),
		labormemory.NewAssignmentRepository(),
		queues, recorder, clk, logger,
	)

	router := gin.New()
	New(directory, ledger, orders, receiving, planner, picking,
		packing, shipping, returns, dispatcher, logger).Register(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndFetchOrder(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", gin.H{
		"orderNumber": "SO-1",
		"customer":    gin.H{"customerId": "C1", "state": "CA"},
		"priority":    "normal",
		"lines": []gin.H{
			{"sku": "SKU-1", "quantity": 3, "unitPrice": 9.99},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/orders/SO-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order struct {
		OrderNumber string `json:"OrderNumber"`
		Status      string `json:"Status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "SO-1", order.OrderNumber)
	assert.Equal(t, "pending", order.Status)
}

func TestGetMissingOrderIs404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/orders/SO-NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateOrderIsConflict(t *testing.T) {
	router := newTestRouter(t)
	order := gin.H{
		"orderNumber": "SO-1",
		"customer":    gin.H{"customerId": "C1"},
		"lines":       []gin.H{{"sku": "SKU-1", "quantity": 1}},
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/orders", order)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/orders", order)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdjustAndReadInventory(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/inventory/adjustments", gin.H{
		"sku":          "SKU-1",
		"locationCode": "A-01-01",
		"delta":        25,
		"reason":       "receiving",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/v1/inventory/SKU-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Quantity  int `json:"quantity"`
		Available int `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 25, summary.Quantity)
	assert.Equal(t, 25, summary.Available)
}

func TestBusyStaffIsConflict(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/staff", gin.H{
		"staffId": "EMP-1", "name": "Dana", "skills": []string{"picking"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	assign := gin.H{"taskId": "PT-1", "taskType": "pick", "staffId": "EMP-1"}
	rec = doJSON(t, router, http.MethodPost, "/api/v1/assignments", assign)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/assignments",
		gin.H{"taskId": "PT-2", "taskType": "pick", "staffId": "EMP-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWaveLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/waves", gin.H{
		"waveId": "W1", "strategy": "standard",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// nothing allocated yet; planning succeeds with an empty wave
	rec = doJSON(t, router, http.MethodPost, "/api/v1/waves/W1/plan", gin.H{"maxOrders": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// releasing an empty wave is a conflict
	rec = doJSON(t, router, http.MethodPost, "/api/v1/waves/W1/release", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/waves", gin.H{
		"waveId": "W2", "strategy": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
