package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration. Build it with FromEnv so main stays lean.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Drafts   DraftConfig
	Admin    AdminConfig
	Limits   RateLimitConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	Debug          bool
	Version        string
	LogFormat      string
	LogLevel       string
	RequestTimeout time.Duration
}

// IsProduction reports whether the service runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig configures Postgres. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig configures the optional Redis draft backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event stream. No brokers means events are
// only logged.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

type DraftBackend string

const (
	DraftBackendMemory   DraftBackend = "memory"
	DraftBackendPostgres DraftBackend = "postgres"
	DraftBackendRedis    DraftBackend = "redis"
)

// DraftConfig controls where drafts live and how long they survive.
type DraftConfig struct {
	Backend         DraftBackend
	RetentionDays   int
	CleanupSchedule string
}

// AdminConfig holds the bearer-token settings for the admin API. An empty
// signing key disables the admin routes.
type AdminConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// RateLimitConfig sets the per-IP budgets on the public routes. The bucket
// store is Redis when REDIS_URL is set and in-process otherwise.
type RateLimitConfig struct {
	Enabled        bool
	ReadPerMinute  int
	WritePerMinute int
}

// FromEnv builds a Config from environment variables. Malformed numbers and
// durations fall back to their defaults.
func FromEnv() Config {
	cfg := Config{
		Server: Server{
			Addr:           envString("FORMATION_ADDR", ":8080"),
			Environment:    envString("APP_ENV", "development"),
			Debug:          envBool("APP_DEBUG", false),
			Version:        envString("APP_VERSION", "1.0.0"),
			LogFormat:      envString("LOG_FORMAT", ""),
			LogLevel:       envString("LOG_LEVEL", "info"),
			RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("KAFKA_AUDIT_TOPIC", "formation.audit"),
		},
		Drafts: DraftConfig{
			RetentionDays:   envInt("DRAFT_RETENTION_DAYS", 7),
			CleanupSchedule: envString("DRAFT_CLEANUP_SCHEDULE", "@every 1h"),
		},
		Admin: AdminConfig{
			SigningKey: os.Getenv("ADMIN_JWT_SIGNING_KEY"),
			Issuer:     envString("ADMIN_JWT_ISSUER", "formation"),
			Audience:   envString("ADMIN_JWT_AUDIENCE", "formation-admin"),
		},
		Limits: RateLimitConfig{
			Enabled:        envBool("RATE_LIMIT_ENABLED", true),
			ReadPerMinute:  envInt("RATE_LIMIT_READ_PER_MINUTE", 300),
			WritePerMinute: envInt("RATE_LIMIT_WRITE_PER_MINUTE", 60),
		},
	}

	if cfg.Server.LogFormat == "" {
		cfg.Server.LogFormat = "text"
		if cfg.Server.IsProduction() {
			cfg.Server.LogFormat = "json"
		}
	}
	if cfg.Drafts.RetentionDays <= 0 {
		cfg.Drafts.RetentionDays = 7
	}
	cfg.Drafts.Backend = draftBackend(os.Getenv("DRAFT_BACKEND"), cfg)
	return cfg
}

// draftBackend defaults to Postgres when a database is configured.
func draftBackend(raw string, cfg Config) DraftBackend {
	switch DraftBackend(strings.ToLower(strings.TrimSpace(raw))) {
	case DraftBackendRedis:
		return DraftBackendRedis
	case DraftBackendPostgres:
		return DraftBackendPostgres
	case DraftBackendMemory:
		return DraftBackendMemory
	}
	if cfg.Database.URL != "" {
		return DraftBackendPostgres
	}
	return DraftBackendMemory
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
