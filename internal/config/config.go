package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/attest/pkg/cache"
	"github.com/JaimeStill/attest/pkg/database"
	"github.com/JaimeStill/attest/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAttestEnv             = "ATTEST_ENV"
	EnvAttestShutdownTimeout = "ATTEST_SHUTDOWN_TIMEOUT"
	EnvAttestVersion         = "ATTEST_VERSION"
	EnvAttestLogLevel        = "ATTEST_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "ATTEST_DB_HOST",
	Port:            "ATTEST_DB_PORT",
	Name:            "ATTEST_DB_NAME",
	User:            "ATTEST_DB_USER",
	Password:        "ATTEST_DB_PASSWORD",
	SSLMode:         "ATTEST_DB_SSL_MODE",
	MaxOpenConns:    "ATTEST_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ATTEST_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ATTEST_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ATTEST_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "ATTEST_STORAGE_PROVIDER",
	ContainerName:    "ATTEST_STORAGE_CONTAINER_NAME",
	ConnectionString: "ATTEST_STORAGE_CONNECTION_STRING",
	AccountURL:       "ATTEST_STORAGE_ACCOUNT_URL",
	Bucket:           "ATTEST_STORAGE_BUCKET",
	Region:           "ATTEST_STORAGE_REGION",
	Endpoint:         "ATTEST_STORAGE_ENDPOINT",
	UsePathStyle:     "ATTEST_STORAGE_USE_PATH_STYLE",
	AccessKeyID:      "ATTEST_STORAGE_ACCESS_KEY_ID",
	SecretAccessKey:  "ATTEST_STORAGE_SECRET_ACCESS_KEY",
}

var cacheEnv = &cache.Env{
	Addr:        "ATTEST_CACHE_ADDR",
	Password:    "ATTEST_CACHE_PASSWORD",
	DB:          "ATTEST_CACHE_DB",
	KeyPrefix:   "ATTEST_CACHE_KEY_PREFIX",
	LockTTL:     "ATTEST_CACHE_LOCK_TTL",
	DialTimeout: "ATTEST_CACHE_DIAL_TIMEOUT",
}

// Config is the root configuration for the attest service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	API             APIConfig       `toml:"api"`
	Signing         SigningConfig   `toml:"signing"`
	LogLevel        string          `toml:"log_level"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ATTEST_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAttestEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level. Validation guarantees it parses.
func (c *Config) Level() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section, for tools such as the
// migration CLI that never touch storage or the cache.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}

	return &cfg.Database, nil
}

func read() (*Config, error) {
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

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.API.Merge(&overlay.API)
	c.Signing.Merge(&overlay.Signing)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"cache", func() error { return c.Cache.Finalize(cacheEnv) }},
		{"api", c.API.Finalize},
		{"signing", c.Signing.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAttestLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvAttestShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAttestVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
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
	if env := os.Getenv(EnvAttestEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
