// Package config loads roomsplit settings from an optional YAML file and
// ROOMSPLIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ROOMSPLIT_SERVER_PORT.
const EnvPrefix = "ROOMSPLIT"

// Config holds all configuration for the server and the CLI
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Client   ClientConfig   `mapstructure:"client"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// StorageConfig selects the server's authoritative store
type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // sqlite or postgres
	SQLitePath string `mapstructure:"sqlite_path"`
}

// PostgresConfig holds database configuration
type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	PoolMaxConns int    `mapstructure:"pool_max_conns"`
}

// ClientConfig holds CLI settings
type ClientConfig struct {
	ServerURL   string        `mapstructure:"server_url"`
	HistoryPath string        `mapstructure:"history_path"` // empty means ~/.roomsplit/history.json
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "./data/roomsplit.db")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "roomsplit")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.pool_max_conns", 10)

	v.SetDefault("client.server_url", "http://localhost:8080")
	v.SetDefault("client.history_path", "")
	v.SetDefault("client.timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
}

// Load reads configuration. With an empty path it looks for an optional
// config.yaml in the working directory and ~/.roomsplit; an explicit path
// must exist. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.roomsplit")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Postgres.Host == "" || c.Postgres.DBName == "" {
			return errors.New("postgres configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown storage driver %q (want sqlite or postgres)", c.Storage.Driver)
	}
	if c.Postgres.PoolMaxConns < 0 || c.Postgres.PoolMaxConns > math.MaxInt32 {
		return fmt.Errorf("invalid postgres.pool_max_conns %d", c.Postgres.PoolMaxConns)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("invalid client timeout %s", c.Client.Timeout)
	}
	return nil
}

// DSN builds a pgx connection string from the postgres section.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", p.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
