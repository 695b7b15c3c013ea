package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no config or .env
// file is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	originalDir, _ := os.Getwd()
	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	return tempDir
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Server.ShutdownTimeout != 10*time.Second {
			t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
		}
		if cfg.Database.Driver != "sqlite" {
			t.Errorf("Database.Driver = %s, want sqlite", cfg.Database.Driver)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Costing.City != "St. Catharines" {
			t.Errorf("Costing.City = %s, want St. Catharines", cfg.Costing.City)
		}
		if cfg.Costing.MarkupPercent != 300 {
			t.Errorf("Costing.MarkupPercent = %v, want 300", cfg.Costing.MarkupPercent)
		}
		if cfg.Costing.DefaultOption != "mid_range" {
			t.Errorf("Costing.DefaultOption = %s, want mid_range", cfg.Costing.DefaultOption)
		}
		if cfg.Catalog.MaxAttempts != 3 {
			t.Errorf("Catalog.MaxAttempts = %d, want 3", cfg.Catalog.MaxAttempts)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("POURCOST_SERVER_PORT", "9090")
		t.Setenv("POURCOST_SERVER_ENVIRONMENT", "production")
		t.Setenv("POURCOST_SERVER_ALLOWED_ORIGINS", "https://bar.example,https://admin.example")
		t.Setenv("POURCOST_DATABASE_DRIVER", "postgres")
		t.Setenv("POURCOST_DATABASE_DSN", "postgres://localhost/pourcost")
		t.Setenv("POURCOST_CACHE_TYPE", "redis")
		t.Setenv("POURCOST_CACHE_REDIS_URL", "localhost:6379")
		t.Setenv("POURCOST_CACHE_TTL", "1h")
		t.Setenv("POURCOST_RATELIMIT_PER_IP", "200")
		t.Setenv("POURCOST_COSTING_CITY", "Toronto")
		t.Setenv("POURCOST_COSTING_MARKUP_PERCENT", "250")
		t.Setenv("POURCOST_CATALOG_BASE_URL", "https://feed.example")
		t.Setenv("POURCOST_CATALOG_SYNC_ON_STARTUP", "true")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://admin.example" {
			t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
		}
		if cfg.Database.Driver != "postgres" {
			t.Errorf("Database.Driver = %s, want postgres", cfg.Database.Driver)
		}
		if cfg.Cache.Type != "redis" || cfg.Cache.RedisURL != "localhost:6379" {
			t.Errorf("Cache = %+v, want redis at localhost:6379", cfg.Cache)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Costing.City != "Toronto" {
			t.Errorf("Costing.City = %s, want Toronto", cfg.Costing.City)
		}
		if cfg.Costing.MarkupPercent != 250 {
			t.Errorf("Costing.MarkupPercent = %v, want 250", cfg.Costing.MarkupPercent)
		}
		if !cfg.Catalog.SyncOnStartup || cfg.Catalog.BaseURL != "https://feed.example" {
			t.Errorf("Catalog = %+v", cfg.Catalog)
		}
	})

	t.Run("reads config.yaml from the working directory", func(t *testing.T) {
		dir := chdirTemp(t)
		yaml := "costing:\n  city: Hamilton\n  markup_percent: 400\nlogging:\n  level: debug\n"
		if err := os.WriteFile(dir+"/config.yaml", []byte(yaml), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Costing.City != "Hamilton" || cfg.Costing.MarkupPercent != 400 {
			t.Errorf("Costing = %+v, want Hamilton at 400", cfg.Costing)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("POURCOST_CACHE_TYPE", "invalid")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("POURCOST_CACHE_TYPE", "redis")

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing redis URL")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		chdirTemp(t)

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		chdirTemp(t)

		envContent := `
# Comment line
POURCOST_TEST_VAR_1=value1

# Another comment
POURCOST_TEST_VAR_2=value2
# POURCOST_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		for _, name := range []string{"POURCOST_TEST_VAR_1", "POURCOST_TEST_VAR_2", "POURCOST_TEST_COMMENTED"} {
			os.Unsetenv(name)
		}
		t.Cleanup(func() {
			os.Unsetenv("POURCOST_TEST_VAR_1")
			os.Unsetenv("POURCOST_TEST_VAR_2")
		})

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("POURCOST_TEST_VAR_1") != "value1" {
			t.Errorf("POURCOST_TEST_VAR_1 = %s, want value1", os.Getenv("POURCOST_TEST_VAR_1"))
		}
		if os.Getenv("POURCOST_TEST_VAR_2") != "value2" {
			t.Errorf("POURCOST_TEST_VAR_2 = %s, want value2", os.Getenv("POURCOST_TEST_VAR_2"))
		}
		if _, ok := os.LookupEnv("POURCOST_TEST_COMMENTED"); ok {
			t.Errorf("POURCOST_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("POURCOST_TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("POURCOST_TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("POURCOST_TEST_OVERRIDE") != "existing-value" {
			t.Errorf("POURCOST_TEST_OVERRIDE = %s, want existing-value", os.Getenv("POURCOST_TEST_OVERRIDE"))
		}
	})

	t.Run("env file feeds Load", func(t *testing.T) {
		chdirTemp(t)
		if err := os.WriteFile(".env", []byte("POURCOST_COSTING_CITY=Welland\n"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("POURCOST_COSTING_CITY") })

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Costing.City != "Welland" {
			t.Errorf("Costing.City = %s, want Welland", cfg.Costing.City)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"},
			Cache:    CacheConfig{Type: "memory"},
			Costing:  CostingConfig{MarkupPercent: 300, DefaultOption: "mid_range"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid configuration", mutate: func(*Config) {}},
		{name: "redis with URL", mutate: func(c *Config) {
			c.Cache.Type = "redis"
			c.Cache.RedisURL = "localhost:6379"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database driver"},
		{name: "empty DSN", mutate: func(c *Config) { c.Database.DSN = " " }, wantErr: "DSN"},
		{name: "invalid cache type", mutate: func(c *Config) { c.Cache.Type = "disk" }, wantErr: "cache type"},
		{name: "redis without URL", mutate: func(c *Config) { c.Cache.Type = "redis" }, wantErr: "Redis URL"},
		{name: "negative markup", mutate: func(c *Config) { c.Costing.MarkupPercent = -1 }, wantErr: "markup"},
		{name: "unknown default option", mutate: func(c *Config) { c.Costing.DefaultOption = "luxury" }, wantErr: "cost option"},
		{name: "sync without feed URL", mutate: func(c *Config) { c.Catalog.SyncOnStartup = true }, wantErr: "catalog base URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
