package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	ServiceName string
	Version     string
	Environment string
	LogLevel    string

	SpannerDB string
	HTTPPort  string

	// JWTSecret verifies the HS256 bearer tokens issued by the identity service.
	JWTSecret string

	// BusinessLocation decides which calendar day "today" is for expiry checks.
	BusinessLocation *time.Location

	// SelfServiceApproval lets a requester decide their own patient-scoped requests.
	SelfServiceApproval bool

	ShutdownTimeout time.Duration
}

// IsDevelopment reports whether the service runs in local development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file and then environment variables with
// defaults suitable for local development against the Spanner emulator.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "optical-discounts"),
		Version:     getEnv("SERVICE_VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SpannerDB:   getEnv("SPANNER_DATABASE", "projects/test-project/instances/dev-instance/databases/optical-db"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_PORT %q", cfg.HTTPPort)
	}

	// The well-known fallback secret is only acceptable on a developer machine.
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, fmt.Errorf("JWT_SECRET is required when ENVIRONMENT is %q", cfg.Environment)
		}
		cfg.JWTSecret = "dev_secret"
	}

	loc, err := time.LoadLocation(getEnv("BUSINESS_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid BUSINESS_TIMEZONE: %w", err)
	}
	cfg.BusinessLocation = loc

	cfg.SelfServiceApproval, err = strconv.ParseBool(getEnv("SELF_SERVICE_APPROVAL", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SELF_SERVICE_APPROVAL: %w", err)
	}

	cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
