// Package config provides configuration loading and validation for the service.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> env vars.
package config

import "time"

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Auth      AuthConfig      `koanf:"auth"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StoreConfig holds SQLite persistence settings. Path is a filesystem path
// or ":memory:" for an ephemeral store.
type StoreConfig struct {
	Path        string        `koanf:"path"`
	BusyTimeout time.Duration `koanf:"busy_timeout"`
}

// CacheConfig holds read-model cache settings.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Size    int           `koanf:"size"`
	TTL     time.Duration `koanf:"ttl"`
}

// AuthConfig holds bearer token verification settings. When disabled, the
// server trusts the X-User-ID header, which is only acceptable behind a
// gateway that strips it from external traffic.
type AuthConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Secret   string `koanf:"secret"`
	Issuer   string `koanf:"issuer"`
	Audience string `koanf:"audience"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}
