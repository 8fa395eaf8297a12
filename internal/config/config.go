package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Values are resolved in three
// layers: built-in defaults, then the YAML file, then environment
// variables. Environment wins.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	MongoDB       MongoDBConfig       `yaml:"mongodb"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// MongoDBConfig holds the order store settings. When disabled the service
// runs on the in-memory repository.
type MongoDBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// KafkaConfig holds the event broker settings. When disabled, domain
// events and Kafka-backed notifications are turned off.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
}

// TracingConfig holds the OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

// NotificationsConfig selects the customer notification channel
type NotificationsConfig struct {
	// Channel is email, sms or log
	Channel string `yaml:"channel"`
}

// LoggingConfig holds the logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8001",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MongoDB: MongoDBConfig{
			Enabled:  true,
			URI:      "mongodb://localhost:27017",
			Database: "orders_db",
		},
		Kafka: KafkaConfig{
			Enabled: true,
			Brokers: []string{"localhost:9092"},
		},
		Tracing: TracingConfig{
			Enabled:      true,
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1.0,
		},
		Notifications: NotificationsConfig{
			Channel: "email",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.MongoDB.URI, "MONGODB_URI")
	setString(&c.MongoDB.Database, "MONGODB_DATABASE")
	setBool(&c.MongoDB.Enabled, "MONGODB_ENABLED")
	setBool(&c.Kafka.Enabled, "KAFKA_ENABLED")
	setString(&c.Tracing.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&c.Tracing.Enabled, "TRACING_ENABLED")
	setString(&c.Notifications.Channel, "NOTIFICATION_CHANNEL")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers := strings.Split(v, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		c.Kafka.Brokers = brokers
	}
}

func (c *Config) validate() error {
	switch c.Notifications.Channel {
	case "email", "sms", "log":
	default:
		return fmt.Errorf("unknown notification channel %q", c.Notifications.Channel)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka is enabled but no brokers are configured")
	}

	return nil
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*target = parsed
		}
	}
}
