package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/stock-ledger/pkg/database"
)

// Config represents the full application configuration surface.
type Config struct {
	Service  ServiceConfig
	Database database.Config
	Ledger   LedgerConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
}

// ServiceConfig holds process-level options.
type ServiceConfig struct {
	Name        string
	Environment string
	LogLevel    string
	HTTPPort    string
}

// LedgerConfig holds the tunables of the stock ledger core.
type LedgerConfig struct {
	// RetryAttempts bounds how often a conflicted write is re-run.
	RetryAttempts int
	// RetryBackoff is the base delay between attempts; it grows linearly
	// with the attempt number. Zero disables backoff.
	RetryBackoff time.Duration
	// CacheTTL is the balance cache time-to-live.
	CacheTTL time.Duration
	// LockTimeout bounds how long a transaction waits on a conflicting row
	// lock before failing as a conflict. Zero keeps the server default.
	LockTimeout time.Duration
}

// KafkaConfig holds event publishing options. Publishing is disabled when
// no brokers are configured.
type KafkaConfig struct {
	Brokers []string
}

// Enabled reports whether movement events should be published.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// TracingConfig holds the Jaeger collector endpoint.
type TracingConfig struct {
	JaegerEndpoint string
}

// Load reads environment variables (optionally from a .env file) and
// materializes a Config instance.
func Load() (*Config, error) {
	// Missing .env files are acceptable; configuration can come from the
	// environment directly.
	_ = godotenv.Load()

	retryAttempts, err := getEnvInt("LEDGER_RETRY_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	retryBackoff, err := getEnvDuration("LEDGER_RETRY_BACKOFF", 10*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("LEDGER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	lockTimeout, err := getEnvDuration("LEDGER_LOCK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "stock-ledger"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			HTTPPort:    getEnv("HTTP_PORT", "8080"),
		},
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockledger"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Ledger: LedgerConfig{
			RetryAttempts: retryAttempts,
			RetryBackoff:  retryBackoff,
			CacheTTL:      cacheTTL,
			LockTimeout:   lockTimeout,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
		},
		Tracing: TracingConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures that required configuration fields are sane.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Service.HTTPPort == "" {
		return errors.New("HTTP_PORT must be provided")
	}
	if c.Ledger.RetryAttempts < 1 {
		return fmt.Errorf("LEDGER_RETRY_ATTEMPTS must be >= 1, got %d", c.Ledger.RetryAttempts)
	}
	if c.Ledger.CacheTTL <= 0 {
		return fmt.Errorf("LEDGER_CACHE_TTL must be positive, got %s", c.Ledger.CacheTTL)
	}
	if c.Ledger.LockTimeout < 0 {
		return fmt.Errorf("LEDGER_LOCK_TIMEOUT must not be negative, got %s", c.Ledger.LockTimeout)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Service.Environment == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: expected integer, got %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: expected duration, got %q", key, value)
	}
	return d, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
