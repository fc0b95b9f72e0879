// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from PROJECTOR_* environment variables.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RPCURL      string `envconfig:"RPC_URL" required:"true"`

	// Optional; without it NFT display-name lookups resolve to not found.
	AlchemyAPIKey string `envconfig:"ALCHEMY_API_KEY"`

	ChainID    uint64 `envconfig:"CHAIN_ID" default:"8453"`
	StartBlock uint64 `envconfig:"START_BLOCK"` // 0 means earliest deployment

	BatchSize     uint64        `envconfig:"BATCH_SIZE" default:"500"`
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	Confirmations uint64        `envconfig:"CONFIRMATIONS" default:"5"`

	APIPort  int    `envconfig:"API_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	RetryEnabled      bool          `envconfig:"RETRY_ENABLED" default:"true"`
	RetryMaxRetries   int           `envconfig:"RETRY_MAX_RETRIES" default:"10"`
	RetryInitialDelay time.Duration `envconfig:"RETRY_INITIAL_DELAY" default:"1s"`
	RetryMaxDelay     time.Duration `envconfig:"RETRY_MAX_DELAY" default:"60s"`
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("projector", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if c.BatchSize == 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid api port %d", c.APIPort)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.RetryEnabled {
		if c.RetryMaxRetries < 0 {
			return fmt.Errorf("retry max retries must not be negative")
		}
		if c.RetryInitialDelay <= 0 || c.RetryMaxDelay < c.RetryInitialDelay {
			return fmt.Errorf("invalid retry delays: initial=%s max=%s", c.RetryInitialDelay, c.RetryMaxDelay)
		}
	}
	return nil
}
