// Package config loads the converter's settings from environment variables.
// Defaults are applied for unset values and the result is validated before
// any store is opened.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	Identity IdentityConfig
	Export   ExportConfig
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	// Driver selects the store: sqlite or postgres (default: sqlite)
	Driver string `env:"DB_DRIVER" default:"sqlite"`

	// URL is a SQLite file path or a PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of pooled PostgreSQL connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// IdentityConfig holds synthetic identity settings.
type IdentityConfig struct {
	// EmailDomain is appended to generated usernames (default: example.com)
	EmailDomain string `env:"IDENTITY_EMAIL_DOMAIN" default:"example.com"`

	// Seed makes generated data repeatable; 0 picks a random seed (default: 0)
	Seed uint64 `env:"IDENTITY_SEED" default:"0"`
}

// ExportConfig holds defaults for the export commands.
type ExportConfig struct {
	// Shape is the JSON layout: list or keyed (default: list)
	Shape string `env:"EXPORT_JSON_SHAPE" default:"list"`

	// KeyColumns lists column names tried, in order, as the keyed-shape key
	// when none is given on the command line (default: id)
	KeyColumns []string `env:"EXPORT_KEY_COLUMNS" default:"id"`
}

// IsPostgres reports whether the configured driver is PostgreSQL.
func (c *DatabaseConfig) IsPostgres() bool {
	return c.Driver == "postgres" || c.Driver == "pgx"
}
