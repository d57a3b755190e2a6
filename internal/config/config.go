// Package config reads the storefront settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendTiered   = "tiered"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort string `envconfig:"GRPC_PORT" default:"50052"`

	StorageBackend string        `envconfig:"STORAGE_BACKEND" default:"memory"`
	CartExpiry     time.Duration `envconfig:"CART_EXPIRY" default:"168h"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	MongoURI       string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName    string        `envconfig:"MONGO_DB_NAME" default:"cartdb"`

	CatalogBackend string `envconfig:"CATALOG_BACKEND" default:"memory"`
	CatalogDBPath  string `envconfig:"CATALOG_DB_PATH" default:"./catalog.db"`

	OrderBackend string `envconfig:"ORDER_BACKEND" default:"memory"`
	DBHost       string `envconfig:"DB_HOST" default:"localhost"`
	DBPort       int    `envconfig:"DB_PORT" default:"5432"`
	DBUser       string `envconfig:"DB_USER" default:"postgres"`
	DBPassword   string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName       string `envconfig:"DB_NAME" default:"ecommerce"`

	// Empty disables the outbox publisher and the order-placed consumer.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaGroupID string   `envconfig:"KAFKA_GROUP_ID" default:"storefront"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" default:"100"`
	SessionIdleTTL  time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendRedis, BackendMongo, BackendTiered:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.CatalogBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend)
	}
	switch c.OrderBackend {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("unknown ORDER_BACKEND %q", c.OrderBackend)
	}
	if c.CartExpiry <= 0 {
		return fmt.Errorf("CART_EXPIRY must be positive, got %s", c.CartExpiry)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// KafkaEnabled reports whether order events leave the process.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
