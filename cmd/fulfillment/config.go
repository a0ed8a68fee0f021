package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the engine's environment-driven configuration. Every field is
// overridable with a FULFILLMENT_-prefixed variable.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	Mongo   MongoConfig
	Kafka   KafkaConfig
	Tracing TracingConfig
	Engine  EngineConfig
}

// EngineConfig holds fulfillment pipeline knobs
type EngineConfig struct {
	WaveInterval  time.Duration `envconfig:"WAVE_INTERVAL" default:"5m"`
	WaveMaxOrders int           `envconfig:"WAVE_MAX_ORDERS" default:"50"`
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	Database   string `envconfig:"MONGO_DATABASE" default:"fulfillment"`
	Username   string `envconfig:"MONGO_USERNAME"`
	Password   string `envconfig:"MONGO_PASSWORD"`
	AuthDB     string `envconfig:"MONGO_AUTH_DB" default:"admin"`
	ReplicaSet string `envconfig:"MONGO_REPLICA_SET"`
}

// KafkaConfig holds work-queue and event-stream settings
type KafkaConfig struct {
	Brokers       []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	ConsumerGroup string   `envconfig:"KAFKA_CONSUMER_GROUP" default:"fulfillment-workers"`
	TopicPrefix   string   `envconfig:"KAFKA_TOPIC_PREFIX" default:"fulfillment.work."`
	EventTopic    string   `envconfig:"KAFKA_EVENT_TOPIC" default:"fulfillment.events"`
	EventSource   string   `envconfig:"KAFKA_EVENT_SOURCE" default:"/fulfillment"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled  bool   `envconfig:"TRACING_ENABLED" default:"true"`
	Endpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
}

func loadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("fulfillment", &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &config, nil
}
