package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Mranger2024/plasticwatcha/internal/auth"
	"github.com/Mranger2024/plasticwatcha/pkg/database"
	"github.com/Mranger2024/plasticwatcha/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAppEnv             = "PLASTICWATCHA_ENV"
	EnvAppShutdownTimeout = "PLASTICWATCHA_SHUTDOWN_TIMEOUT"
	EnvAppVersion         = "PLASTICWATCHA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PLASTICWATCHA_DB_HOST",
	Port:            "PLASTICWATCHA_DB_PORT",
	Name:            "PLASTICWATCHA_DB_NAME",
	User:            "PLASTICWATCHA_DB_USER",
	Password:        "PLASTICWATCHA_DB_PASSWORD",
	SSLMode:         "PLASTICWATCHA_DB_SSL_MODE",
	MaxOpenConns:    "PLASTICWATCHA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PLASTICWATCHA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PLASTICWATCHA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PLASTICWATCHA_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "PLASTICWATCHA_STORAGE_CONTAINER_NAME",
	ConnectionString: "PLASTICWATCHA_STORAGE_CONNECTION_STRING",
	PublicBaseURL:    "PLASTICWATCHA_STORAGE_PUBLIC_BASE_URL",
}

var authEnv = &auth.Env{
	Issuer:   "PLASTICWATCHA_AUTH_ISSUER",
	ClientID: "PLASTICWATCHA_AUTH_CLIENT_ID",
}

// Config is the root configuration for the platform services.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Auth            auth.Config     `toml:"auth"`
	API             APIConfig       `toml:"api"`
	Agent           AgentConfig     `toml:"agent"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PLASTICWATCHA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAppEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadAgent reads configuration like Load but finalizes only the sections
// the sync agent uses: database, storage, and agent. Server-only sections
// such as auth are left unvalidated so the agent can run without them.
func LoadAgent() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	cfg.loadDefaults()
	cfg.loadEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := cfg.Storage.Finalize(storageEnv); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := cfg.Agent.Finalize(); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Agent.Finalize(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}
func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAppShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAppVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAppEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
