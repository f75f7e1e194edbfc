// Package config defines the application configuration and its loader.
package config

import (
	"fmt"
	"time"

	"github.com/openjwks/jwksd/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Keys     KeysConfig     `mapstructure:"keys"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	Debug        bool   `mapstructure:"debug"`         // enables pprof endpoints
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MinConns        int    `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"` // in minutes
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig configures the optional Redis-backed JWKS cache. An empty
// address list selects the in-process cache instead.
type RedisConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Password  string   `mapstructure:"password"`
	DB        int      `mapstructure:"db"`
}

// Enabled reports whether a Redis cache is configured.
func (c *RedisConfig) Enabled() bool {
	return len(c.Addresses) > 0
}

// KeysConfig configures the key lifecycle. TTLs are injected into the
// lifecycle components at construction; they are never read from ambient
// process state after startup.
type KeysConfig struct {
	PrivateKeyTTL          time.Duration `mapstructure:"private_key_ttl"`
	KeyTTL                 time.Duration `mapstructure:"key_ttl"`
	AutoDeleteOnFullExpiry bool          `mapstructure:"auto_delete_on_full_expiry"`
	SweepInterval          time.Duration `mapstructure:"sweep_interval"`
	JWKSCacheTTL           time.Duration `mapstructure:"jwks_cache_ttl"`
}

// AuditConfig configures the optional Kafka audit trail. An empty broker list
// routes audit events to the log sink instead.
type AuditConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// Enabled reports whether the Kafka audit sink is configured.
func (c *AuditConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	Environment    string  `mapstructure:"environment"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks the configuration invariants. The key lifecycle invariant
// key_ttl >= private_key_ttl is enforced here so that every generated record
// satisfies key_expires_at >= private_key_expires_at by construction.
func (c *Config) Validate() error {
	if c.Keys.PrivateKeyTTL <= 0 {
		return fmt.Errorf("keys.private_key_ttl must be positive, got %s", c.Keys.PrivateKeyTTL)
	}
	if c.Keys.KeyTTL < c.Keys.PrivateKeyTTL {
		return fmt.Errorf("keys.key_ttl (%s) must not be shorter than keys.private_key_ttl (%s)",
			c.Keys.KeyTTL, c.Keys.PrivateKeyTTL)
	}
	if c.Keys.SweepInterval <= 0 {
		return fmt.Errorf("keys.sweep_interval must be positive, got %s", c.Keys.SweepInterval)
	}
	if c.Audit.Enabled() && c.Audit.Topic == "" {
		return fmt.Errorf("audit.topic is required when audit brokers are configured")
	}
	return nil
}

// Defaults returns a configuration populated with the development defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  10,
			WriteTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "jwksd",
			Database: "jwksd",
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 2,
		},
		Keys: KeysConfig{
			PrivateKeyTTL:          constants.DefaultPrivateKeyTTL,
			KeyTTL:                 constants.DefaultKeyTTL,
			AutoDeleteOnFullExpiry: false,
			SweepInterval:          constants.DefaultSweepInterval,
			JWKSCacheTTL:           constants.DefaultJWKSCacheTTL,
		},
		Log: LogConfig{Level: "info"},
	}
}
