// Package config manages environment variables.
//
// It reads variables from the `.env` file (when present),
// loads them into structured Go types, and validates that
// required values are present so the storage layer can fail
// fast on a bad environment.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values and driver-specific rules.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the ESTATE_ prefix. Keys are lowercased, the
	prefix removed, and a double underscore marks nesting:

	  ESTATE_DATABASE__HOST              -> database.host
	  ESTATE_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level

	Single underscores stay inside the key (ssl_mode, max_open_conns).
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "ESTATE_"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration object.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// DatabaseConfig contains connection parameters for either driver.
//
// Postgres uses Host/Port/User/Password/Name/SSLMode; SQLite only uses Path
// (":memory:" for a private in-memory database).
type DatabaseConfig struct {
	Driver          string `koanf:"driver" validate:"required,oneof=postgres sqlite"`
	Host            string `koanf:"host" validate:"required_if=Driver postgres"`
	Port            int    `koanf:"port" validate:"required_if=Driver postgres"`
	User            string `koanf:"user" validate:"required_if=Driver postgres"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode         string `koanf:"ssl_mode"`
	Path            string `koanf:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"gte=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"gte=0"`
}

// IsMemory reports whether the config points at an in-memory SQLite database.
func (d DatabaseConfig) IsMemory() bool {
	return d.Driver == DriverSQLite && (d.Path == ":memory:" || strings.Contains(d.Path, "mode=memory"))
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, and applies defaults.
//
// Unlike a server entrypoint this never exits the process: every failure is
// returned so the caller decides what to do with it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := mainConfig.finalize(); err != nil {
		return nil, err
	}
	return mainConfig, nil
}

// finalize validates tags, injects observability defaults and runs the
// custom validation rules. Shared by LoadConfig and tests building a Config
// by hand.
func (c *Config) finalize() error {
	if c.Database.Driver == DriverPostgres && c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	defaults := DefaultObservabilityConfig()
	if c.Observability == nil {
		c.Observability = defaults
	}
	// A partially set block (e.g. only the level) keeps defaults for the rest.
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = defaults.Logging.Level
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = defaults.Logging.Format
	}

	// Service name and environment always follow the primary config so
	// logs and traces agree on naming.
	c.Observability.ServiceName = defaults.ServiceName
	c.Observability.Environment = c.Primary.Env

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}
	return nil
}

// NewMemoryConfig returns a ready-to-use config for a private in-memory
// SQLite database. Used by tests and local tooling.
func NewMemoryConfig() *Config {
	cfg := &Config{
		Primary: Primary{Env: "test"},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   ":memory:",
		},
	}
	// A hand-built memory config always passes validation.
	_ = cfg.finalize()
	return cfg
}
