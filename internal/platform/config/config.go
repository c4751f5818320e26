package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration, read from environment variables.
type Config struct {
	Server    Server
	Logging   Logging
	Invite    Invite
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Directory DirectoryConfig
	Tracing   TracingConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"ROSTER_ADDR"             envDefault:":8080"`
	AdminToken      string        `env:"ROSTER_ADMIN_TOKEN"`
	ShutdownTimeout time.Duration `env:"ROSTER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Logging selects the slog handler.
type Logging struct {
	Format string `env:"ROSTER_LOG_FORMAT" envDefault:"json"`
	Level  string `env:"ROSTER_LOG_LEVEL"  envDefault:"info"`
}

// Invite tunes invite flows.
type Invite struct {
	MaxEntryLimit int           `env:"ROSTER_INVITE_MAX_ENTRIES"   envDefault:"1000"`
	FlowTTL       time.Duration `env:"ROSTER_INVITE_FLOW_TTL"      envDefault:"30m"`
	SweepInterval time.Duration `env:"ROSTER_INVITE_SWEEP_INTERVAL" envDefault:"1m"`
	TextDebounce  time.Duration `env:"ROSTER_INVITE_TEXT_DEBOUNCE"  envDefault:"300ms"`
}

// RedisConfig configures the flow store. An empty URL keeps flows in memory.
type RedisConfig struct {
	URL          string        `env:"ROSTER_REDIS_URL"`
	PoolSize     int           `env:"ROSTER_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"ROSTER_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"ROSTER_REDIS_DIAL_TIMEOUT"   envDefault:"5s"`
	ReadTimeout  time.Duration `env:"ROSTER_REDIS_READ_TIMEOUT"   envDefault:"3s"`
	WriteTimeout time.Duration `env:"ROSTER_REDIS_WRITE_TIMEOUT"  envDefault:"3s"`
	KeyPrefix    string        `env:"ROSTER_REDIS_KEY_PREFIX"     envDefault:"roster:invite-flow:"`
}

// PostgresConfig configures the learner directory. An empty DSN uses the
// in-memory directory.
type PostgresConfig struct {
	DSN             string        `env:"ROSTER_POSTGRES_DSN"`
	MaxOpenConns    int           `env:"ROSTER_POSTGRES_MAX_OPEN_CONNS"    envDefault:"10"`
	MaxIdleConns    int           `env:"ROSTER_POSTGRES_MAX_IDLE_CONNS"    envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"ROSTER_POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
	EnsureSchema    bool          `env:"ROSTER_POSTGRES_ENSURE_SCHEMA"     envDefault:"false"`
}

// KafkaConfig configures the invitation publisher. No brokers means
// invitations are recorded in memory and logged.
type KafkaConfig struct {
	Brokers           []string `env:"ROSTER_KAFKA_BROKERS" envSeparator:","`
	Topic             string   `env:"ROSTER_KAFKA_TOPIC"              envDefault:"roster.invitations"`
	Partitions        int32    `env:"ROSTER_KAFKA_TOPIC_PARTITIONS"   envDefault:"3"`
	ReplicationFactor int16    `env:"ROSTER_KAFKA_REPLICATION_FACTOR" envDefault:"1"`
	// BreakerFailures consecutive publish failures open the delivery circuit.
	BreakerFailures      int           `env:"ROSTER_KAFKA_BREAKER_FAILURES"       envDefault:"5"`
	BreakerTrialInterval time.Duration `env:"ROSTER_KAFKA_BREAKER_TRIAL_INTERVAL" envDefault:"10s"`
}

// DirectoryConfig sizes the learner directory cache.
type DirectoryConfig struct {
	CacheSize int           `env:"ROSTER_DIRECTORY_CACHE_SIZE" envDefault:"256"`
	CacheTTL  time.Duration `env:"ROSTER_DIRECTORY_CACHE_TTL"  envDefault:"5m"`
	// SeedFile is an optional CSV of org_id,email[,group_id] rows imported at startup.
	SeedFile string `env:"ROSTER_DIRECTORY_SEED_FILE"`
}

// TracingConfig enables OTLP export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"ROSTER_OTEL_ENDPOINT"`
	ServiceName string `env:"ROSTER_OTEL_SERVICE_NAME" envDefault:"roster"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds and validates a Config so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.AdminToken == "" {
		errs = append(errs, errors.New("ROSTER_ADMIN_TOKEN is required"))
	}
	if c.Invite.MaxEntryLimit <= 0 {
		errs = append(errs, errors.New("ROSTER_INVITE_MAX_ENTRIES must be positive"))
	}
	if c.Invite.FlowTTL <= 0 {
		errs = append(errs, errors.New("ROSTER_INVITE_FLOW_TTL must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("ROSTER_KAFKA_TOPIC is required when brokers are set"))
	}
	return errors.Join(errs...)
}
