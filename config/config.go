package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Store   StoreConfig   `mapstructure:"store"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
	// PublicURL prefixes frame paths handed back to clients. Empty keeps them relative.
	PublicURL string `mapstructure:"public_url"`
}

// CatalogConfig points at the catalog document.
type CatalogConfig struct {
	// Source is a file path or an http(s) URL to a .json, .yaml or .yml catalog.
	Source string `mapstructure:"source"`
}

// StoreConfig selects where user copies are persisted.
type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	RedisURL   string `mapstructure:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// SandboxConfig holds execution sandbox configuration
type SandboxConfig struct {
	// FramePolicy is sent as the Content-Security-Policy of rendered frames.
	FramePolicy string `mapstructure:"frame_policy"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// Store backend names.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// New loads and validates the application configuration
func New() (*Config, error) {
	// A missing .env file is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LABHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.public_url", "")
	v.SetDefault("catalog.source", "programs.json")
	v.SetDefault("store.backend", StoreMemory)
	v.SetDefault("store.redis_url", "redis://localhost:6379/0")
	v.SetDefault("store.sqlite_path", "labhub.db")
	v.SetDefault("store.key_prefix", "labhub_usercode")
	v.SetDefault("sandbox.frame_policy", "sandbox allow-scripts allow-modals")
	v.SetDefault("logging.mode", "production")
	v.SetDefault("logging.level", "info")
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != TransportStdio && c.Server.Transport != TransportHTTP {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be between 1 and 65535, got: %d", c.Server.HTTPPort)
	}

	if strings.TrimSpace(c.Catalog.Source) == "" {
		return fmt.Errorf("catalog.source must not be empty")
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis backend")
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported store.backend: %s", c.Store.Backend)
	}

	if c.Store.KeyPrefix == "" || strings.Contains(c.Store.KeyPrefix, ":") {
		return fmt.Errorf("invalid store.key_prefix: %q, must be non-empty and must not contain ':'", c.Store.KeyPrefix)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// HTTPAddress returns the listen address for the HTTP transport.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}
