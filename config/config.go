// config/config.go
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"

	"querygate/internal/logger"
)

var customLog = logger.NewLogger()

// Config holds process-level configuration values read from the
// environment. Document-level settings live in settings.yaml (see
// Settings) and the query/mapping/integration JSON documents (see Store).
type Config struct {
	Environment string
	ConfigDir   string
	TokenSecret string
	LogLevel    string
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		ConfigDir:   getEnv("CONFIG_DIR", "config"),
		TokenSecret: os.Getenv("TOKEN_SECRET"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	// Critical: the master secret signs continuation tokens and protects
	// stored secrets. Every serving process must share the same value.
	if cfg.TokenSecret == "" {
		return nil, errors.New("TOKEN_SECRET environment variable must be set")
	}

	customLog.Printf("Configuration loaded successfully. Env: %s, ConfigDir: %s", cfg.Environment, cfg.ConfigDir)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
