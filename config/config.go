package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Costing   CostingConfig
	Catalog   CatalogConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SeedRecipes     bool          `mapstructure:"seed_recipes"`
}

// DatabaseConfig holds relational store settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL      string        `mapstructure:"redis_url"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
	Burst int `mapstructure:"burst"`
}

// CostingConfig holds pricing policy defaults
type CostingConfig struct {
	City               string  `mapstructure:"city"`
	MarkupPercent      float64 `mapstructure:"markup_percent"`
	DefaultOption      string  `mapstructure:"default_option"`
	TierCandidateLimit int     `mapstructure:"tier_candidate_limit"`
}

// CatalogConfig holds product feed settings
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	SyncOnStartup     bool          `mapstructure:"sync_on_startup"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pourcost/")

	// POURCOST_CACHE_REDIS_URL maps to cache.redis_url
	v.SetEnvPrefix("POURCOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.seed_recipes", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:pourcost.db?cache=shared&_foreign_keys=on")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "pourcost:")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("costing.city", "St. Catharines")
	v.SetDefault("costing.markup_percent", 300.0)
	v.SetDefault("costing.default_option", "mid_range")
	v.SetDefault("costing.tier_candidate_limit", 10)

	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.timeout", "30s")
	v.SetDefault("catalog.requests_per_second", 2.0)
	v.SetDefault("catalog.max_attempts", 3)
	v.SetDefault("catalog.sync_on_startup", false)

	v.SetDefault("logging.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Database.Driver {
	case "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("database driver must be 'sqlite' or 'postgres', got: %s", config.Database.Driver)
	}

	if strings.TrimSpace(config.Database.DSN) == "" {
		return fmt.Errorf("database DSN is required (set POURCOST_DATABASE_DSN)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Costing.MarkupPercent < 0 {
		return fmt.Errorf("markup percent must not be negative, got: %v", config.Costing.MarkupPercent)
	}

	switch config.Costing.DefaultOption {
	case "", "cheapest", "mid_range", "premium", "best_match":
	default:
		return fmt.Errorf("unknown default cost option: %s", config.Costing.DefaultOption)
	}

	if config.Catalog.SyncOnStartup && config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required when sync on startup is enabled")
	}

	return nil
}

// loadEnvFile copies variables from ./.env into the process environment.
// Variables that are already set win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	env := viper.New()
	env.SetConfigFile(".env")
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, env.GetString(key)); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}
