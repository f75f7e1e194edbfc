package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

// Load reads the configuration from file and environment variables.
// Environment variables use the JWKSD_ prefix with dots replaced by
// underscores, e.g. JWKSD_KEYS_PRIVATE_KEY_TTL=24h.
func Load(log logger.Logger) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/jwksd/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInternal("failed to read config file").WithCause(err)
		}
	} else {
		// Reload on file change so the next restartless tweak to log level
		// or cache TTL is at least visible in the logs.
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info(context.Background(), "config file changed",
				logger.String("file", e.Name))
		})
		v.WatchConfig()
	}

	v.SetEnvPrefix("JWKSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ErrInternal("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ErrInvalidRequest(err.Error())
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.max_conns", d.Database.MaxConns)
	v.SetDefault("database.min_conns", d.Database.MinConns)

	v.SetDefault("keys.private_key_ttl", d.Keys.PrivateKeyTTL)
	v.SetDefault("keys.key_ttl", d.Keys.KeyTTL)
	v.SetDefault("keys.auto_delete_on_full_expiry", d.Keys.AutoDeleteOnFullExpiry)
	v.SetDefault("keys.sweep_interval", d.Keys.SweepInterval)
	v.SetDefault("keys.jwks_cache_ttl", d.Keys.JWKSCacheTTL)

	v.SetDefault("audit.topic", "jwksd.audit")
	v.SetDefault("audit.write_timeout", "10s")
	v.SetDefault("audit.batch_timeout", "1s")

	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("tracing.service_name", "jwksd")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sampling_rate", 1.0)
}
