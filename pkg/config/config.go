package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every field carries its fully qualified
// MASHARY_* variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	DraftLock    DraftLockConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MASHARY_APP_ENV" required:"true"`
	Port         string `envconfig:"MASHARY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MASHARY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MASHARY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MASHARY_DB_DSN"`
	Driver string `envconfig:"MASHARY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MASHARY_DB_HOST"`
	LegacyPort     int    `envconfig:"MASHARY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MASHARY_DB_USER"`
	LegacyPassword string `envconfig:"MASHARY_DB_PASSWORD"`
	LegacyName     string `envconfig:"MASHARY_DB_NAME"`
	LegacySSLMode  string `envconfig:"MASHARY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MASHARY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MASHARY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MASHARY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MASHARY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.LegacyHost == "" || db.LegacyUser == "" || db.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name parts are required")
	}
	db.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(db.LegacyUser),
		url.QueryEscape(db.LegacyPassword),
		db.LegacyHost,
		db.LegacyPort,
		db.LegacyName,
		db.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MASHARY_REDIS_URL"`
	Address      string        `envconfig:"MASHARY_REDIS_ADDR"`
	Password     string        `envconfig:"MASHARY_REDIS_PASSWORD"`
	DB           int           `envconfig:"MASHARY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MASHARY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MASHARY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MASHARY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MASHARY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MASHARY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MASHARY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MASHARY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MASHARY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// DraftLockConfig tunes the per-project mutation mutex held in Redis.
type DraftLockConfig struct {
	TTL       time.Duration `envconfig:"MASHARY_DRAFT_LOCK_TTL" default:"15s"`
	WaitRetry time.Duration `envconfig:"MASHARY_DRAFT_LOCK_WAIT_RETRY" default:"50ms"`
	WaitMax   time.Duration `envconfig:"MASHARY_DRAFT_LOCK_WAIT_MAX" default:"2s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MASHARY_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MASHARY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MASHARY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MASHARY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"MASHARY_PUBSUB_DOMAIN_TOPIC" default:"mashary-domain-events"`
	DomainSubscription string `envconfig:"MASHARY_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MASHARY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MASHARY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MASHARY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}
