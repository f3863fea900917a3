package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Scan         ScanConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token verification parameters. Tokens are issued by the
// managed identity provider; this service only verifies them.
type AuthConfig struct {
	JWTSecret string
}

// ScanConfig controls the breach scan driver.
type ScanConfig struct {
	LookaheadMinutes        int
	IntervalMinutes         int
	Concurrency             int
	NotifyOncePerTransition bool
	NotifyResponseBreach    bool
	StateTTLMinutes         int
	TriggerToken            string
	RunWorker               bool
}

// NotificationConfig holds notification delivery settings.
type NotificationConfig struct {
	EmailEnabled bool
	EmailFrom    string
	WebhookURL   string
	LinkBaseURL  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-sla-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", "dev-secret"),
		},
		Scan: ScanConfig{
			LookaheadMinutes:        getEnvAsInt("SCAN_LOOKAHEAD_MINUTES", 60),
			IntervalMinutes:         getEnvAsInt("SCAN_INTERVAL_MINUTES", 10),
			Concurrency:             getEnvAsInt("SCAN_CONCURRENCY", 4),
			NotifyOncePerTransition: getEnvAsBool("SCAN_NOTIFY_ONCE_PER_TRANSITION", false),
			NotifyResponseBreach:    getEnvAsBool("SCAN_NOTIFY_RESPONSE", false),
			StateTTLMinutes:         getEnvAsInt("SCAN_STATE_TTL_MINUTES", 24*60),
			TriggerToken:            getEnv("SCAN_TRIGGER_TOKEN", ""),
			RunWorker:               getEnvAsBool("SCAN_RUN_WORKER", false),
		},
		Notification: NotificationConfig{
			EmailEnabled: getEnvAsBool("NOTIFY_EMAIL_ENABLED", false),
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL:   getEnv("NOTIFY_WEBHOOK_URL", ""),
			LinkBaseURL:  getEnv("NOTIFY_LINK_BASE_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Lookahead returns how far ahead of resolution deadlines the scan reaches.
func (s ScanConfig) Lookahead() time.Duration {
	if s.LookaheadMinutes <= 0 {
		return 0
	}
	return time.Duration(s.LookaheadMinutes) * time.Minute
}

// Interval returns the cadence of the internal scan worker.
func (s ScanConfig) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// StateTTL bounds how long per-ticket scan state is retained.
func (s ScanConfig) StateTTL() time.Duration {
	if s.StateTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.StateTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
