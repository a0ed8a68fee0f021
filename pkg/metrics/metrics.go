package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all fulfillment engine metrics
type Metrics struct {
	registry *prometheus.Registry

	// Queue metrics
	QueueMessagesConsumed *prometheus.CounterVec
	QueueHandlerDuration  *prometheus.HistogramVec
	QueueHandlerFailures  *prometheus.CounterVec

	// Pipeline metrics
	OrdersValidated      *prometheus.CounterVec
	OrdersAllocated      *prometheus.CounterVec
	WavesPlanned         prometheus.Counter
	ShipmentsCreated     *prometheus.CounterVec
	AllocationShortfalls prometheus.Counter

	// Circuit breaker metrics
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig() *Config {
	return &Config{
		Namespace: "wms",
		Subsystem: "fulfillment",
	}
}

// New creates a new Metrics instance with its own registry
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := func(name, help string, labels ...string) *prometheus.CounterVec {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
		registry.MustRegister(vec)
		return vec
	}

	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(c)
		return c
	}

	handlerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Subsystem: config.Subsystem,
		Name:      "queue_handler_duration_seconds",
		Help:      "Time spent handling one work-queue message",
		Buckets:   prometheus.DefBuckets,
	}, []string{"queue"})
	registry.MustRegister(handlerDuration)

	return &Metrics{
		registry: registry,

		QueueMessagesConsumed: factory("queue_messages_consumed_total", "Messages consumed from work queues", "queue"),
		QueueHandlerDuration:  handlerDuration,
		QueueHandlerFailures:  factory("queue_handler_failures_total", "Handler failures causing redelivery", "queue"),

		OrdersValidated:      factory("orders_validated_total", "Orders validated by result", "result"),
		OrdersAllocated:      factory("orders_allocated_total", "Orders allocated by result", "result"),
		WavesPlanned:         counter("waves_planned_total", "Waves planned"),
		ShipmentsCreated:     factory("shipments_created_total", "Shipments created by carrier", "carrier"),
		AllocationShortfalls: counter("allocation_shortfalls_total", "Allocations that could not be fully satisfied"),

		CircuitBreakerTrips: factory("circuit_breaker_trips_total", "Circuit breaker open transitions", "name"),
	}
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHandler records one consumed message and its handling duration
func (m *Metrics) ObserveHandler(queue string, start time.Time, err error) {
	m.QueueMessagesConsumed.WithLabelValues(queue).Inc()
	m.QueueHandlerDuration.WithLabelValues(queue).Observe(time.Since(start).Seconds())
	if err != nil {
		m.QueueHandlerFailures.WithLabelValues(queue).Inc()
	}
}
