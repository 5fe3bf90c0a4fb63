package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"jackpot/database"

	"github.com/joho/godotenv"
)

// Settlement strategies
const (
	SettlementModeTransactional = "transactional"
	SettlementModeCompensating  = "compensating"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	HTTPAddr string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Game configuration
	StartingBalance      int64
	PoolSeedAmount       int64
	DailyAllowanceAmount int64
	DailyCooldown        time.Duration

	// Settlement configuration
	SettlementMode       string // "transactional" or "compensating"
	SettlementMaxRetries int    // Retries on serialization conflicts (transactional mode only)

	// NATS configuration
	NATSEnabled bool
	NATSServers string // NATS server addresses (comma-separated)

	// Redis state cache configuration
	RedisAddr     string // Empty disables the cache
	RedisPassword string
	RedisDB       int
	StateCacheTTL time.Duration

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Game settings with defaults
		StartingBalance:      0,
		PoolSeedAmount:       1000,
		DailyAllowanceAmount: 100,
		DailyCooldown:        24 * time.Hour,

		// Settlement
		SettlementMode:       getEnvWithDefault("SETTLEMENT_MODE", SettlementModeTransactional),
		SettlementMaxRetries: 5,

		// NATS
		NATSEnabled: os.Getenv("NATS_ENABLED") == "true",
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),

		// Redis
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		StateCacheTTL: 2 * time.Second,

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "jackpot"),
		OTelExportIntervalMillis: 15000,

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if err := overrideInt64("STARTING_BALANCE", &config.StartingBalance); err != nil {
		return nil, err
	}
	if err := overrideInt64("POOL_SEED_AMOUNT", &config.PoolSeedAmount); err != nil {
		return nil, err
	}
	if err := overrideInt64("DAILY_ALLOWANCE_AMOUNT", &config.DailyAllowanceAmount); err != nil {
		return nil, err
	}
	if err := overrideDuration("DAILY_COOLDOWN", &config.DailyCooldown); err != nil {
		return nil, err
	}
	if err := overrideDuration("STATE_CACHE_TTL", &config.StateCacheTTL); err != nil {
		return nil, err
	}
	if err := overrideInt("SETTLEMENT_MAX_RETRIES", &config.SettlementMaxRetries); err != nil {
		return nil, err
	}
	if err := overrideInt("REDIS_DB", &config.RedisDB); err != nil {
		return nil, err
	}
	if err := overrideInt("OTEL_EXPORT_INTERVAL_MS", &config.OTelExportIntervalMillis); err != nil {
		return nil, err
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	config.SettlementMode = strings.ToLower(strings.TrimSpace(config.SettlementMode))
	if config.SettlementMode != SettlementModeTransactional && config.SettlementMode != SettlementModeCompensating {
		return nil, fmt.Errorf("SETTLEMENT_MODE must be %q or %q, got %q",
			SettlementModeTransactional, SettlementModeCompensating, config.SettlementMode)
	}
	if config.PoolSeedAmount < 0 {
		return nil, fmt.Errorf("POOL_SEED_AMOUNT cannot be negative")
	}
	if config.DailyAllowanceAmount <= 0 {
		return nil, fmt.Errorf("DAILY_ALLOWANCE_AMOUNT must be positive")
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		// If DatabaseName is provided, ensure it's not empty
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func overrideInt64(key string, dst *int64) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func overrideInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func overrideDuration(key string, dst *time.Duration) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		StartingBalance:      0,
		PoolSeedAmount:       1000,
		DailyAllowanceAmount: 100,
		DailyCooldown:        24 * time.Hour,
		SettlementMode:       SettlementModeTransactional,
		SettlementMaxRetries: 5,
		StateCacheTTL:        2 * time.Second,
		LogLevel:             "debug",
	}
}
