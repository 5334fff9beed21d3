package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Engine   EngineConfig
	Worker   WorkerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Version  string
}

// EngineConfig tunes batch reconciliation.
type EngineConfig struct {
	// DefaultTimezone applies when a branch has no timezone of its own.
	DefaultTimezone string
	Workers         int
	// DirectionOverrides is a "mode=in,mode=out" list merged over the built-in table.
	DirectionOverrides string
	TimestampLayouts   []string
	IncludeRoster      bool
	DefaultRules       bool
}

// WorkerConfig holds queue and cron settings for cmd/worker.
type WorkerConfig struct {
	AWSRegion       string
	AWSEndpoint     string
	QueueURL        string
	Concurrency     int
	UploadInterval  time.Duration
	UploadBatchSize int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  getEnv("APP_VERSION", "v1.0.0"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Engine configuration
	workers, err := strconv.Atoi(getEnv("ENGINE_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_WORKERS: %w", err)
	}
	includeRoster, err := strconv.ParseBool(getEnv("ENGINE_INCLUDE_ROSTER", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_INCLUDE_ROSTER: %w", err)
	}
	defaultRules, err := strconv.ParseBool(getEnv("ENGINE_DEFAULT_RULES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_DEFAULT_RULES: %w", err)
	}

	config.Engine = EngineConfig{
		DefaultTimezone:    getEnv("ENGINE_DEFAULT_TIMEZONE", "UTC"),
		Workers:            workers,
		DirectionOverrides: getEnv("DIRECTION_OVERRIDES", ""),
		TimestampLayouts:   getEnvSlice("ENGINE_TIMESTAMP_LAYOUTS", ";"),
		IncludeRoster:      includeRoster,
		DefaultRules:       defaultRules,
	}

	// Worker configuration
	concurrency, err := strconv.Atoi(getEnv("WORKER_CONCURRENCY", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}
	uploadInterval, err := time.ParseDuration(getEnv("UPLOAD_PROCESS_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_PROCESS_INTERVAL: %w", err)
	}
	uploadBatchSize, err := strconv.Atoi(getEnv("UPLOAD_BATCH_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_BATCH_SIZE: %w", err)
	}

	config.Worker = WorkerConfig{
		AWSRegion:       getEnv("AWS_REGION", "ap-southeast-1"),
		AWSEndpoint:     getEnv("AWS_ENDPOINT", ""),
		QueueURL:        getEnv("PAYROLL_QUEUE_URL", ""),
		Concurrency:     concurrency,
		UploadInterval:  uploadInterval,
		UploadBatchSize: uploadBatchSize,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return errors.New("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Engine.Workers < 1 {
		return errors.New("ENGINE_WORKERS must be at least 1")
	}
	if _, err := time.LoadLocation(c.Engine.DefaultTimezone); err != nil {
		return fmt.Errorf("ENGINE_DEFAULT_TIMEZONE: %w", err)
	}
	if c.Worker.Concurrency < 1 {
		return errors.New("WORKER_CONCURRENCY must be at least 1")
	}
	if c.Worker.UploadInterval <= 0 {
		return errors.New("UPLOAD_PROCESS_INTERVAL must be positive")
	}
	return nil
}

// Location returns the default engine timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Engine.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, sep string) []string {
	value := getEnv(env, "")
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
