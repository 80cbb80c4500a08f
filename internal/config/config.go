// Package config handles configuration loading and validation for the
// worker's reference host (cmd/worker). The CORE packages (engine, bridge,
// registry, hash, scratchpad, mpsc) take no config of their own — every
// field here configures ambient scaffolding around the bridge.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the reference host.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
	Log       LogConfig       `mapstructure:"log"`
}

// APIConfig defines the local control API's HTTP settings.
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
}

// TelemetryConfig defines the Redis pub/sub fan-out for outbound
// result/hashrate/error events (component I in SPEC_FULL.md) — publish-only, never read back by
// the engine, so it never reintroduces cross-restart persistence.
type TelemetryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Channel  string        `mapstructure:"channel"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ProfilingConfig defines the pprof debug server settings.
type ProfilingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bind    string `mapstructure:"bind"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Load reads configuration from file and environment, applying defaults for
// anything unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cn-worker-core")
	}

	v.SetEnvPrefix("CN_WORKER")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.bind", "127.0.0.1:8080")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.redis_url", "127.0.0.1:6379")
	v.SetDefault("telemetry.db", 0)
	v.SetDefault("telemetry.channel", "cn-worker:telemetry")
	v.SetDefault("telemetry.timeout", "2s")

	v.SetDefault("profiling.enabled", false)
	v.SetDefault("profiling.bind", "127.0.0.1:6060")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks configuration for errors.
func (c *Config) Validate() error {
	if c.API.Enabled && c.API.Bind == "" {
		return fmt.Errorf("api.bind is required when api is enabled")
	}
	if c.Telemetry.Enabled && c.Telemetry.RedisURL == "" {
		return fmt.Errorf("telemetry.redis_url is required when telemetry is enabled")
	}
	if c.Profiling.Enabled && c.Profiling.Bind == "" {
		return fmt.Errorf("profiling.bind is required when profiling is enabled")
	}
	return nil
}
