// Package config loads the runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// StoreBackend selects persistence: "mongo" for the durable backend,
	// "memory" for the in-process one.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"mongo"`
	MongoURI     string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName  string `envconfig:"MONGO_DB_NAME" default:"atlasarrow"`

	// RedisAddr empty disables the cart cache.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	PaymentGatewayURL     string        `envconfig:"PAYMENT_GATEWAY_URL" default:"https://api.razorpay.com"`
	PaymentKeyID          string        `envconfig:"PAYMENT_KEY_ID"`
	PaymentKeySecret      string        `envconfig:"PAYMENT_KEY_SECRET"`
	PaymentRequestTimeout time.Duration `envconfig:"PAYMENT_REQUEST_TIMEOUT" default:"10s"`

	// SMTPAddr empty disables outbound mail; in-app notification records
	// are still written.
	SMTPAddr        string `envconfig:"SMTP_ADDR"`
	SMTPFrom        string `envconfig:"SMTP_FROM" default:"orders@atlasarrow.example"`
	NotifyQueueSize int    `envconfig:"NOTIFY_QUEUE_SIZE" default:"256"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreBackend != BackendMongo && cfg.StoreBackend != BackendMemory {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return &cfg, nil
}
