package config

import (
	"client-registry/database"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string
	LogFile  string

	DatabaseDriver     string
	DatabaseURL        string
	DatabaseInitScript string

	PageSize     int
	SessionTTL   time.Duration
	SessionSweep string
}

var AppConfig *Config

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the environment (and .env when present) into AppConfig.
// Invalid configuration is fatal.
func Load() {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		log.Fatal(err)
	}
	AppConfig = cfg
}

// Parse builds a Config from the current environment without touching AppConfig.
func Parse() (*Config, error) {
	cfg := &Config{
		Port:               GetEnv("PORT", "3000"),
		Env:                GetEnv("ENV", "development"),
		LogLevel:           GetEnv("LOG_LEVEL", "info"),
		LogFile:            GetEnv("LOG_FILE", ""),
		DatabaseDriver:     GetEnv("DATABASE_DRIVER", database.DriverSQLite3),
		DatabaseURL:        GetEnv("DATABASE_URL", ""),
		DatabaseInitScript: GetEnv("DATABASE_INIT_SCRIPT", ""),
		SessionSweep:       GetEnv("SESSION_SWEEP", "@every 5m"),
	}

	if cfg.DatabaseURL == "" {
		return nil, &database.ConfigurationError{Field: "DATABASE_URL", Reason: "is required"}
	}
	if _, err := database.DialectFor(cfg.DatabaseDriver); err != nil {
		return nil, err
	}

	pageSize, err := strconv.Atoi(GetEnv("PAGE_SIZE", "10"))
	if err != nil || pageSize <= 0 {
		return nil, &database.ConfigurationError{Field: "PAGE_SIZE", Reason: fmt.Sprintf("must be a positive integer, got %q", os.Getenv("PAGE_SIZE"))}
	}
	cfg.PageSize = pageSize

	ttl, err := time.ParseDuration(GetEnv("SESSION_TTL", "30m"))
	if err != nil || ttl <= 0 {
		return nil, &database.ConfigurationError{Field: "SESSION_TTL", Reason: fmt.Sprintf("must be a positive duration, got %q", os.Getenv("SESSION_TTL"))}
	}
	cfg.SessionTTL = ttl

	if _, err := cron.ParseStandard(cfg.SessionSweep); err != nil {
		return nil, &database.ConfigurationError{Field: "SESSION_SWEEP", Reason: err.Error()}
	}

	return cfg, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
