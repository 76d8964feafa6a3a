package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	// BackendSQL puts the audit log next to the catalogue.
	BackendSQL = "sql"
)

// DefaultRetentionDays is the retention applied when no value is configured.
// It equals the compliance floor.
const DefaultRetentionDays = 365

// Config is the process configuration.
type Config struct {
	Store   StoreConfig
	Audit   AuditConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Log     LogConfig
	Metrics MetricsConfig
	// LockTTL bounds how long one sync may hold a framework lock.
	LockTTL time.Duration
}

// StoreConfig selects the catalogue store.
type StoreConfig struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
	TxTimeout   time.Duration
}

// AuditConfig selects the audit-log store and retention defaults.
type AuditConfig struct {
	Backend       string
	MongoURI      string
	MongoDatabase string
	RetentionDays int
}

// RedisConfig configures the optional Redis connection used for locking.
// An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event publisher. No brokers
// disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig configures pushing run metrics. An empty URL disables it.
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Load reads the given .env files (default ".env") into the environment,
// skipping files that do not exist, and then builds the config.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the config from ISMS_* environment variables.
func FromEnv() (Config, error) {
	p := parser{}
	cfg := Config{
		Store: StoreConfig{
			Backend:     strings.ToLower(env("ISMS_STORE", BackendSQLite)),
			DatabaseURL: os.Getenv("ISMS_DATABASE_URL"),
			SQLitePath:  env("ISMS_SQLITE_PATH", "isms.db"),
			TxTimeout:   p.duration("ISMS_TX_TIMEOUT", 30*time.Second),
		},
		Audit: AuditConfig{
			Backend:       strings.ToLower(env("ISMS_AUDIT_STORE", BackendSQL)),
			MongoURI:      os.Getenv("ISMS_MONGO_URI"),
			MongoDatabase: env("ISMS_MONGO_DB", "isms"),
			RetentionDays: p.int("ISMS_AUDIT_RETENTION_DAYS", DefaultRetentionDays),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("ISMS_REDIS_URL"),
			PoolSize:     p.int("ISMS_REDIS_POOL_SIZE", 10),
			MinIdleConns: p.int("ISMS_REDIS_MIN_IDLE_CONNS", 0),
			DialTimeout:  p.duration("ISMS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("ISMS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("ISMS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("ISMS_KAFKA_BROKERS")),
			Topic:   env("ISMS_KAFKA_TOPIC", "isms.audit"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(env("ISMS_LOG_LEVEL", "info")),
			Format: strings.ToLower(env("ISMS_LOG_FORMAT", "text")),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: os.Getenv("ISMS_PUSHGATEWAY_URL"),
			Job:            env("ISMS_PUSHGATEWAY_JOB", "ismsctl"),
		},
		LockTTL: p.duration("ISMS_LOCK_TTL", 10*time.Minute),
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("ISMS_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown ISMS_STORE %q", c.Store.Backend)
	}
	switch c.Audit.Backend {
	case BackendSQL, BackendMemory:
	case BackendMongo:
		if c.Audit.MongoURI == "" {
			return errors.New("ISMS_MONGO_URI is required for the mongo audit store")
		}
	default:
		return fmt.Errorf("unknown ISMS_AUDIT_STORE %q", c.Audit.Backend)
	}
	if c.Audit.Backend == BackendSQL && c.Store.Backend == BackendMemory {
		return errors.New("ISMS_AUDIT_STORE=sql needs a SQL catalogue store")
	}
	if c.Store.TxTimeout <= 0 {
		return errors.New("ISMS_TX_TIMEOUT must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown ISMS_LOG_FORMAT %q", c.Log.Format)
	}
	return nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser records the first malformed value.
type parser struct {
	err error
}

func (p *parser) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}
