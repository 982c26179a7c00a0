// Package config provides centralized configuration management for the importer.
// Values come from built-in defaults, an optional YAML file, and environment
// variables, in that order of precedence (environment wins).
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Source   SourceConfig   `yaml:"source"`
	Security SecurityConfig `yaml:"security"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is 0 by default; imports can run for minutes.
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig holds settings for the HTTP API.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are believed.
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects API requests without a valid X-API-Key header (default: false)
	RequireAPIKey bool `yaml:"require_api_key" env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `yaml:"api_keys" env:"SECURITY_API_KEYS"`
}

// DatabaseConfig holds catalog database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars.
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is small on purpose: an import holds a single connection.
	MaxConns int `yaml:"max_conns" env:"DB_MAX_CONNS" default:"4"`

	MinConns int `yaml:"min_conns" env:"DB_MIN_CONNS" default:"1"`

	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds reconciliation and batching settings.
type ImportConfig struct {
	// CommitEvery is the number of successfully processed records per commit (default: 10)
	CommitEvery int `yaml:"commit_every" env:"IMPORT_COMMIT_EVERY" default:"10"`

	// AlternateTag is the provenance marker written on alternate catalog rows (default: OCDIA)
	AlternateTag string `yaml:"alternate_tag" env:"IMPORT_ALTERNATE_TAG" default:"OCDIA"`

	// FailOnErrors makes the CLI exit non-zero when any record failed (default: false)
	FailOnErrors bool `yaml:"fail_on_errors" env:"IMPORT_FAIL_ON_ERRORS" default:"false"`

	// MaxFileSize is the maximum accepted upload size in bytes (default: 100MB)
	MaxFileSize int64 `yaml:"max_file_size" env:"IMPORT_MAX_FILE_SIZE" default:"104857600"`

	// MaxWaitTime is how long an HTTP import waits for the import slot (default: 30s)
	MaxWaitTime time.Duration `yaml:"max_wait_time" env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import run; 0 disables it.
	Timeout time.Duration `yaml:"timeout" env:"IMPORT_TIMEOUT" default:"0s"`
}

// SourceConfig controls how input files are read.
type SourceConfig struct {
	// SkipHeader drops the first row of spreadsheet and CSV sources (default: true)
	SkipHeader bool `yaml:"skip_header" env:"SOURCE_SKIP_HEADER" default:"true"`

	// Sheet selects the worksheet; empty means the first sheet.
	Sheet string `yaml:"sheet" env:"SOURCE_SHEET"`

	// DefaultUOM replaces a blank unit of measure (default: EA)
	DefaultUOM string `yaml:"default_uom" env:"SOURCE_DEFAULT_UOM" default:"EA"`

	// DesktopQuery is run against desktop database files. It must return
	// part number, description, manufacturer, uom, note, alternate part number.
	DesktopQuery string `yaml:"desktop_query" env:"SOURCE_DESKTOP_QUERY"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
