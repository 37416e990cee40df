// Package relay provides configuration loading for the relay service. All
// knobs come from the environment with sensible defaults for local use.
package relay

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the relay runtime settings, including the security controls
// applied to every WebSocket connection.
type Config struct {
	ListenAddr     string   `envconfig:"RELAY_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"RELAY_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// MaxMessageSize bounds a single inbound frame in bytes.
	MaxMessageSize int64 `envconfig:"RELAY_MAX_MESSAGE_SIZE" default:"4096"`

	// SendBufferSize is the per-connection outbound queue; a member whose
	// queue is full at delivery time is treated as disconnected.
	SendBufferSize int `envconfig:"RELAY_SEND_BUFFER" default:"256"`

	RateLimitBurst  int           `envconfig:"RELAY_RATE_LIMIT_BURST" default:"20"`
	RateLimitRefill time.Duration `envconfig:"RELAY_RATE_LIMIT_REFILL" default:"1s"`

	ShutdownTimeout time.Duration `envconfig:"RELAY_SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel string `envconfig:"RELAY_LOG_LEVEL" default:"info"`
}

// LoadConfig reads the configuration from the environment and applies
// defaults for anything unset or out of range.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("loading relay config: %w", err)
	}
	cfg.sanitize()
	return cfg, nil
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	cfg := Config{
		ListenAddr:      ":8080",
		AllowedOrigins:  []string{"http://localhost:3000"},
		MaxMessageSize:  4096,
		SendBufferSize:  256,
		RateLimitBurst:  20,
		RateLimitRefill: time.Second,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
	}
	return cfg
}

func (c *Config) sanitize() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = 256
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 20
	}
	if c.RateLimitRefill <= 0 {
		c.RateLimitRefill = time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// LoggerLevel maps the configured level name onto slog. Unknown names fall
// back to info.
func (c Config) LoggerLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
