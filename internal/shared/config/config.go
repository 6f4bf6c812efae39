package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Encryption EncryptionConfig
	Provider   ProviderConfig
	Firebase   FirebaseConfig
	Jobs       JobsConfig
	Messages   MessagesConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type EncryptionConfig struct {
	// Key is the AES-256 key as 64 hex characters.
	Key string
}

type ProviderConfig struct {
	BaseURL        string
	WebhookSecret  string
	RequestTimeout time.Duration
	SyncWindowDays int
	// RateLimit is the max provider requests per second.
	RateLimit float64
}

type FirebaseConfig struct {
	CredentialsFile string
}

// JobsConfig holds the independent schedules of the background job families.
type JobsConfig struct {
	Enabled                 bool
	TransactionSyncInterval time.Duration
	BalanceSyncInterval     time.Duration
	ReportInterval          time.Duration
	NotifyTick              time.Duration
	DeviceCleanupInterval   time.Duration
	WorkerCount             int
	JobDelay                time.Duration
	QueueSize               int
	RunOnStartup            bool
}

type MessagesConfig struct {
	File string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
}

// LoadDatabase reads only the database settings. Used by the migration tool,
// which has no business requiring the rest of the configuration.
func LoadDatabase() (DatabaseConfig, error) {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "dailyspend"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "dailyspend"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}, nil
}

func Load() (*Config, error) {
	database, err := LoadDatabase()
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getDurationEnv("PROVIDER_REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	syncWindowDays, err := strconv.Atoi(getEnv("SYNC_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_WINDOW_DAYS: %w", err)
	}
	rateLimit, err := strconv.ParseFloat(getEnv("PROVIDER_RATE_LIMIT", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_RATE_LIMIT: %w", err)
	}

	txInterval, err := getDurationEnv("TRANSACTION_SYNC_INTERVAL", 4*time.Hour)
	if err != nil {
		return nil, err
	}
	balInterval, err := getDurationEnv("BALANCE_SYNC_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	reportInterval, err := getDurationEnv("REPORT_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	notifyTick, err := getDurationEnv("NOTIFY_TICK", time.Minute)
	if err != nil {
		return nil, err
	}
	cleanupInterval, err := getDurationEnv("DEVICE_CLEANUP_INTERVAL", 168*time.Hour)
	if err != nil {
		return nil, err
	}

	workerCount, err := strconv.Atoi(getEnv("JOB_WORKERS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_WORKERS: %w", err)
	}
	jobDelay, err := getDurationEnv("JOB_DELAY", 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	queueSize, err := strconv.Atoi(getEnv("JOB_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_QUEUE_SIZE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Database: database,
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
		Provider: ProviderConfig{
			BaseURL:        getEnv("PROVIDER_BASE_URL", "https://api.provider.example.com"),
			WebhookSecret:  getEnv("PROVIDER_WEBHOOK_SECRET", ""),
			RequestTimeout: requestTimeout,
			SyncWindowDays: syncWindowDays,
			RateLimit:      rateLimit,
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Jobs: JobsConfig{
			Enabled:                 getBoolEnv("JOBS_ENABLED", true),
			TransactionSyncInterval: txInterval,
			BalanceSyncInterval:     balInterval,
			ReportInterval:          reportInterval,
			NotifyTick:              notifyTick,
			DeviceCleanupInterval:   cleanupInterval,
			WorkerCount:             workerCount,
			JobDelay:                jobDelay,
			QueueSize:               queueSize,
			RunOnStartup:            getBoolEnv("JOBS_RUN_ON_STARTUP", false),
		},
		Messages: MessagesConfig{
			File: getEnv("MESSAGES_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "dailyspend-api"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
	}

	if cfg.Encryption.Key == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(cfg.Encryption.Key) != 64 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes for AES-256)")
	}
	if _, err := hex.DecodeString(cfg.Encryption.Key); err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be valid hex: %w", err)
	}
	if cfg.Provider.WebhookSecret == "" {
		return nil, fmt.Errorf("PROVIDER_WEBHOOK_SECRET is required")
	}
	if cfg.Provider.SyncWindowDays < 1 {
		return nil, fmt.Errorf("SYNC_WINDOW_DAYS must be at least 1")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the connection string in URL form, as the migration tool
// expects.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
