package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	facapp "github.com/wms-platform/fulfillment/internal/facility/application"
	facmongo "github.com/wms-platform/fulfillment/internal/facility/infrastructure/mongodb"
	"github.com/wms-platform/fulfillment/internal/gateway"
	invapp "github.com/wms-platform/fulfillment/internal/inventory/application"
	invmongo "github.com/wms-platform/fulfillment/internal/inventory/infrastructure/mongodb"
	laborapp "github.com/wms-platform/fulfillment/internal/labor/application"
	labormongo "github.com/wms-platform/fulfillment/internal/labor/infrastructure/mongodb"
	orapp "github.com/wms-platform/fulfillment/internal/orders/application"
	ormongo "github.com/wms-platform/fulfillment/internal/orders/infrastructure/mongodb"
	packapp "github.com/wms-platform/fulfillment/internal/packing/application"
	packmongo "github.com/wms-platform/fulfillment/internal/packing/infrastructure/mongodb"
	pickapp "github.com/wms-platform/fulfillment/internal/picking/application"
	pickmongo "github.com/wms-platform/fulfillment/internal/picking/infrastructure/mongodb"
	recapp "github.com/wms-platform/fulfillment/internal/receiving/application"
	recmongo "github.com/wms-platform/fulfillment/internal/receiving/infrastructure/mongodb"
	retapp "github.com/wms-platform/fulfillment/internal/returns/application"
	retmongo "github.com/wms-platform/fulfillment/internal/returns/infrastructure/mongodb"
	shipapp "github.com/wms-platform/fulfillment/internal/shipping/application"
	shipmongo "github.com/wms-platform/fulfillment/internal/shipping/infrastructure/mongodb"
	waveapp "github.com/wms-platform/fulfillment/internal/waving/application"
	wavedomain "github.com/wms-platform/fulfillment/internal/waving/domain"
	wavemongo "github.com/wms-platform/fulfillment/internal/waving/infrastructure/mongodb"
	"github.com/wms-platform/fulfillment/internal/worker"
	"github.com/wms-platform/fulfillment/pkg/blob"
	"github.com/wms-platform/fulfillment/pkg/clock"
	"github.com/wms-platform/fulfillment/pkg/events"
	"github.com/wms-platform/fulfillment/pkg/logging"
	"github.com/wms-platform/fulfillment/pkg/metrics"
	"github.com/wms-platform/fulfillment/pkg/mongodb"
	"github.com/wms-platform/fulfillment/pkg/queue"
	"github.com/wms-platform/fulfillment/pkg/resilience"
	"github.com/wms-platform/fulfillment/pkg/tracing"
)

const serviceName = "fulfillment"

func main() {
	config, err := loadConfig()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(config.LogLevel)
	logger := logging.New(logConfig)
	logger.SetDefault()
	logger.Info("starting fulfillment engine", "environment", config.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("fulfillment engine exited")
		os.Exit(1)
	}
	logger.Info("fulfillment engine stopped")
}

func run(ctx context.Context, config *Config, logger *logging.Logger) error {
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.Environment = config.Environment
	tracingConfig.OTLPEndpoint = config.Tracing.Endpoint
	tracingConfig.Enabled = config.Tracing.Enabled
	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Warn("tracing disabled", "endpoint", config.Tracing.Endpoint)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Warn("failed to shut down tracer")
			}
		}()
	}

	m := metrics.New(metrics.DefaultConfig())

	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = config.Mongo.URI
	mongoConfig.Database = config.Mongo.Database
	mongoConfig.Username = config.Mongo.Username
	mongoConfig.Password = config.Mongo.Password
	mongoConfig.AuthDB = config.Mongo.AuthDB
	mongoConfig.ReplicaSet = config.Mongo.ReplicaSet
	mongoClient, err := mongodb.NewClient(ctx, mongoConfig)
	if err != nil {
		return err
	}
	defer mongoClient.Close(context.Background())
	db := mongoClient.Database()
	logger.Info("connected to mongodb", "database", config.Mongo.Database)

	queueConfig := queue.DefaultKafkaConfig()
	queueConfig.Brokers = config.Kafka.Brokers
	queueConfig.ConsumerGroup = config.Kafka.ConsumerGroup
	queueConfig.TopicPrefix = config.Kafka.TopicPrefix
	queues := queue.NewKafkaPublisher(queueConfig)
	defer queues.Close()
	consumer := queue.NewKafkaConsumer(queueConfig, logger)
	defer consumer.Close()

	publisher := events.NewKafkaPublisher(&events.KafkaPublisherConfig{
		Brokers: config.Kafka.Brokers,
		Topic:   config.Kafka.EventTopic,
		Source:  config.Kafka.EventSource,
	})
	defer publisher.Close()
	logger.Info("kafka initialized", "brokers", config.Kafka.Brokers)

	labels, err := blob.NewGridFS(db, "labels")
	if err != nil {
		return err
	}

	clk := clock.Real{}

	// repositories
	locationRepo := facmongo.NewLocationRepository(db)
	productRepo := facmongo.NewProductRepository(db)
	recordRepo := invmongo.NewRecordRepository(db)
	transactionRepo := invmongo.NewTransactionRepository(db)
	allocationRepo := invmongo.NewAllocationRepository(db)
	lotRepo := invmongo.NewLotRepository(db)
	orderRepo, err := ormongo.NewOrderRepository(db)
	if err != nil {
		return err
	}
	waveRepo, err := wavemongo.NewWaveRepository(db)
	if err != nil {
		return err
	}
	pickTaskRepo, err := pickmongo.NewPickTaskRepository(db)
	if err != nil {
		return err
	}
	pickExceptionRepo, err := pickmongo.NewPickExceptionRepository(db)
	if err != nil {
		return err
	}
	slipRepo, err := packmongo.NewPackingSlipRepository(db)
	if err != nil {
		return err
	}
	carrierRepo, err := shipmongo.NewCarrierRepository(db)
	if err != nil {
		return err
	}
	shipmentRepo, err := shipmongo.NewShipmentRepository(db)
	if err != nil {
		return err
	}
	rmaRepo, err := retmongo.NewRMARepository(db)
	if err != nil {
		return err
	}
	purchaseOrderRepo, err := recmongo.NewPurchaseOrderRepository(db)
	if err != nil {
		return err
	}
	asnRepo, err := recmongo.NewASNRepository(db)
	if err != nil {
		return err
	}
	appointmentRepo, err := recmongo.NewDockAppointmentRepository(db)
	if err != nil {
		return err
	}
	receiptRepo, err := recmongo.NewReceiptRepository(db)
	if err != nil {
		return err
	}
	receivingTaskRepo, err := recmongo.NewReceivingTaskRepository(db)
	if err != nil {
		return err
	}
	discrepancyRepo, err := recmongo.NewDiscrepancyRepository(db)
	if err != nil {
		return err
	}
	putAwayRepo, err := recmongo.NewPutAwayTaskRepository(db)
	if err != nil {
		return err
	}
	staffRepo, err := labormongo.NewStaffRepository(db)
	if err != nil {
		return err
	}
	equipmentRepo, err := labormongo.NewEquipmentRepository(db)
	if err != nil {
		return err
	}
	assignmentRepo, err := labormongo.NewAssignmentRepository(db)
	if err != nil {
		return err
	}

	// services
	directory := facapp.NewDirectoryService(locationRepo, productRepo, logger)
	ledger := invapp.NewLedgerService(recordRepo, transactionRepo, allocationRepo, lotRepo,
		publisher, clk, logger)
	orders := orapp.NewPipelineService(orderRepo, ledger, queues, publisher, clk, logger)
	receiving := recapp.NewReceivingService(purchaseOrderRepo, asnRepo, appointmentRepo,
		receiptRepo, receivingTaskRepo, discrepancyRepo, putAwayRepo,
		ledger, directory, queues, publisher, clk, logger)
	planner := waveapp.NewPlannerService(waveRepo, orderRepo, queues, publisher, clk, logger)
	picking := pickapp.NewExecutorService(pickTaskRepo, pickExceptionRepo, orderRepo, waveRepo,
		ledger, queues, publisher, clk, logger)
	packing := packapp.NewPackingService(slipRepo, orderRepo, queues, publisher, clk, logger)
	breakerConfig := resilience.DefaultCircuitBreakerConfig("label-storage")
	breakerConfig.OnOpen = func(name string) {
		m.CircuitBreakerTrips.WithLabelValues(name).Inc()
	}
	labelBreaker := resilience.NewCircuitBreaker(breakerConfig, logger)
	shipping := shipapp.NewShippingService(carrierRepo, shipmentRepo, slipRepo, orderRepo,
		labels, labelBreaker, publisher, clk, logger)
	returns := retapp.NewReturnsService(rmaRepo, orderRepo, ledger, labels,
		queues, publisher, clk, logger)
	dispatcher := laborapp.NewDispatcherService(staffRepo, equipmentRepo, assignmentRepo,
		queues, publisher, clk, logger)

	gw := gateway.New(directory, ledger, orders, receiving, planner, picking,
		packing, shipping, returns, dispatcher, logger)

	w := worker.New(orders, picking, shipping, dispatcher, consumer, m, logger)
	w.Register()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.Run(groupCtx)
	})
	group.Go(func() error {
		return runWaveScheduler(groupCtx, planner, config.Engine, m, logger)
	})
	group.Go(func() error {
		return serveHTTP(groupCtx, config.HTTPAddr, gw, mongoClient, m, logger)
	})
	return group.Wait()
}

// runWaveScheduler periodically sweeps allocated orders into a standard wave
// and releases it. Empty waves are cancelled and nothing is released.
func runWaveScheduler(ctx context.Context, planner *waveapp.PlannerService, engine EngineConfig, m *metrics.Metrics, logger *logging.Logger) error {
	logger = logger.WithComponent("wave.scheduler")
	ticker := time.NewTicker(engine.WaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		waveID := "W-" + uuid.NewString()[:8]
		if _, err := planner.CreateWave(ctx, waveID, wavedomain.StrategyStandard); err != nil {
			logger.WithError(err).Error("failed to create wave")
			continue
		}
		wave, err := planner.PlanWave(ctx, waveID, waveapp.PlanWaveCriteria{MaxOrders: engine.WaveMaxOrders})
		if err != nil {
			logger.WithError(err).Error("failed to plan wave", "waveId", waveID)
			continue
		}
		if len(wave.OrderNumbers) == 0 {
			if _, err := planner.CancelWave(ctx, waveID); err != nil {
				logger.WithError(err).Warn("failed to cancel empty wave", "waveId", waveID)
			}
			continue
		}
		if _, err := planner.ReleaseWave(ctx, waveID); err != nil {
			logger.WithError(err).Error("failed to release wave", "waveId", waveID)
			continue
		}
		m.WavesPlanned.Inc()
		logger.Info("wave released", "waveId", waveID, "orders", len(wave.OrderNumbers))
	}
}

// serveHTTP exposes the operator API plus liveness, readiness and metrics
// until ctx is cancelled
func serveHTTP(ctx context.Context, addr string, gw *gateway.Gateway, mongoClient *mongodb.Client, m *metrics.Metrics, logger *logging.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	gw.Register(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	router.GET("/ready", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.HealthCheck(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	server := &http.Server{Addr: addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
