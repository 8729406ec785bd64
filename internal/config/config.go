// Package config loads the environment-driven configuration shared by
// both services.
// Each service calls Load with its own env prefix ("WALLET" or
// "HISTORY") so the two processes never collide on environment
// variable names even when run side by side in the same container
// orchestrator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration for one service process.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	EventLog EventLogConfig `mapstructure:"event_log"`
	Log      LogConfig      `mapstructure:"log"`
}

// AppConfig identifies the running process for logs and metrics.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig configures the service's own Postgres database — the
// Wallet Store or the History Store. No cross-service database access
// is ever performed.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN renders the pgx connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// EventLogConfig configures the event-log transport — the broker
// address and topic are the coordination contract between the two
// services; ConsumerGroup and BatchSize are only meaningful on the
// History Service's consumer.
type EventLogConfig struct {
	BrokerAddress string `mapstructure:"broker_address"`
	Topic         string `mapstructure:"topic"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	BatchSize     int    `mapstructure:"batch_size"`
}

// LogConfig configures the slog-based structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables prefixed with
// prefix (e.g. "WALLET" yields WALLET_DATABASE_HOST, WALLET_SERVER_PORT,
// ...). No config file is read — only env vars and defaults; a
// file-based Load(path, name) variant is intentionally left out.
func Load(prefix string) (*Config, error) {
	v := viper.New()
	setDefaults(v, prefix)

	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, prefix string) {
	v.SetDefault("app.name", strings.ToLower(prefix)+"-service")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", strings.ToLower(prefix))
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("event_log.broker_address", "localhost:9092")
	v.SetDefault("event_log.topic", "wallet_events")
	v.SetDefault("event_log.consumer_group", "history-service")
	v.SetDefault("event_log.batch_size", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the fields this platform treats as load-bearing. Most
// defaults are safe for local development; production is expected to
// override them via environment variables.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.EventLog.BrokerAddress == "" {
		return fmt.Errorf("event log broker address is required")
	}
	if c.EventLog.Topic == "" {
		return fmt.Errorf("event log topic is required")
	}
	if c.EventLog.BatchSize <= 0 {
		return fmt.Errorf("event log batch size must be positive")
	}
	return nil
}
