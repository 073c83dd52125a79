// ./internal/config/config.go

package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application-wide configuration for the server binary:
// bind host/port, shard count, optional cache capacity, and shutdown
// behavior.
type Config struct {
	Host            string
	Port            string
	NumShards       int
	CacheCapacity   int // 0 disables the LRU cache adapter.
	ShutdownTimeout time.Duration
}

// NewDefaultConfig creates a Config struct with sensible default values,
// matching spec.md §6's defaults (host localhost, port 8000, 10 shards).
func NewDefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            "8000",
		NumShards:       10,
		CacheCapacity:   0,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig loads configuration with a clear precedence: environment >
// .env file > defaults. A missing .env file is not an error — it is simply
// absent in most deployments.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := NewDefaultConfig()
	slog.Info("Loading configuration...")
	applyEnvConfig(&cfg)
	return cfg
}

// applyEnvConfig overrides config values from environment variables.
func applyEnvConfig(cfg *Config) {
	if hostEnv := os.Getenv("STOREKV_HOST"); hostEnv != "" {
		cfg.Host = hostEnv
		slog.Info("Overriding Host from environment", "value", hostEnv)
	}

	if portEnv := os.Getenv("STOREKV_PORT"); portEnv != "" {
		cfg.Port = portEnv
		slog.Info("Overriding Port from environment", "value", portEnv)
	}

	if numShardsEnv := os.Getenv("STOREKV_NUM_SHARDS"); numShardsEnv != "" {
		if i, err := strconv.Atoi(numShardsEnv); err == nil && i > 0 {
			cfg.NumShards = i
			slog.Info("Overriding NumShards from environment", "value", i)
		} else {
			slog.Warn("Invalid STOREKV_NUM_SHARDS env var, using default", "value", numShardsEnv)
		}
	}

	if cacheCapEnv := os.Getenv("STOREKV_CACHE_CAPACITY"); cacheCapEnv != "" {
		if i, err := strconv.Atoi(cacheCapEnv); err == nil && i >= 0 {
			cfg.CacheCapacity = i
			slog.Info("Overriding CacheCapacity from environment", "value", i)
		} else {
			slog.Warn("Invalid STOREKV_CACHE_CAPACITY env var, using default", "value", cacheCapEnv)
		}
	}

	overrideDuration("STOREKV_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
}

func overrideDuration(envKey string, target *time.Duration) {
	envVal := os.Getenv(envKey)
	if envVal != "" {
		if d, err := time.ParseDuration(envVal); err == nil {
			*target = d
			slog.Info("Overriding duration from environment", "key", envKey, "value", envVal)
		} else {
			slog.Warn("Invalid duration format in env var, using default", "key", envKey, "value", envVal)
		}
	}
}

// Addr returns the host:port pair to bind the listener to.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}
