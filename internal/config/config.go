package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	GRPC     GRPCConfig
	Worker   WorkerConfig
	Feed     FeedConfig
	DB       DatabaseConfig
	Routing  RoutingConfig
	Redis    RedisConfig
	Fixtures FixturesConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type GRPCConfig struct {
	Enabled bool
	Port    int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

// FeedConfig describes the optional external crisis feed.
type FeedConfig struct {
	Enabled      bool
	URL          string
	PollInterval time.Duration
}

type DatabaseConfig struct {
	Path string
}

type RoutingConfig struct {
	OSRMURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// RedisConfig enables the Redis route cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FixturesConfig struct {
	Path string // empty means the embedded seed
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		GRPC: GRPCConfig{
			Enabled: getEnvBool("GRPC_ENABLED", true),
			Port:    getEnvInt("GRPC_PORT", 50051),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Feed: FeedConfig{
			Enabled:      getEnvBool("CRISIS_FEED_ENABLED", false),
			URL:          getEnv("CRISIS_FEED_URL", ""),
			PollInterval: getEnvDuration("CRISIS_FEED_POLL_INTERVAL", time.Minute),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", ":memory:"),
		},
		Routing: RoutingConfig{
			OSRMURL:  getEnv("OSRM_URL", "https://router.project-osrm.org"),
			Timeout:  getEnvDuration("OSRM_TIMEOUT", 15*time.Second),
			CacheTTL: getEnvDuration("ROUTE_CACHE_TTL", time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Fixtures: FixturesConfig{
			Path: getEnv("FIXTURES_PATH", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Enabled && (c.GRPC.Port < 1 || c.GRPC.Port > 65535) {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Worker.Count)
	}

	if c.Feed.Enabled {
		if c.Feed.URL == "" {
			return fmt.Errorf("CRISIS_FEED_URL is required when the crisis feed is enabled")
		}
		if c.Feed.PollInterval < 10*time.Second {
			return fmt.Errorf("crisis feed poll interval must be at least 10 seconds")
		}
	}

	if c.DB.Path == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.Routing.Timeout <= 0 {
		return fmt.Errorf("OSRM timeout must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
