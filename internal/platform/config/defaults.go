package config

const (
	defaultServerPort = 8080

	defaultCacheSize = 1000
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"store.path":         "planfold.db",
		"store.busy_timeout": "5s",

		"cache.enabled": true,
		"cache.size":    defaultCacheSize,
		"cache.ttl":     "5m",

		"auth.enabled":  false,
		"auth.secret":   "",
		"auth.issuer":   "",
		"auth.audience": "",

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
