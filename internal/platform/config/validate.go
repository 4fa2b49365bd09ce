package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.Store.validate(),
		c.Cache.validate(),
		c.Auth.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (s *StoreConfig) validate() error {
	var errs []error

	if s.Path == "" {
		errs = append(errs, errors.New("store.path must not be empty"))
	}
	if s.BusyTimeout < 0 {
		errs = append(errs, errors.New("store.busy_timeout must not be negative"))
	}

	return errors.Join(errs...)
}

func (c *CacheConfig) validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error

	if c.Size < 1 {
		errs = append(errs, fmt.Errorf("cache.size must be >= 1, got %d", c.Size))
	}
	if c.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) validate() error {
	if !a.Enabled {
		return nil
	}

	var errs []error

	if a.Secret == "" {
		errs = append(errs, errors.New("auth.secret must not be empty when auth is enabled"))
	}
	if a.Issuer == "" {
		errs = append(errs, errors.New("auth.issuer must not be empty when auth is enabled"))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
