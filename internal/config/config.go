package config

import (
	"os"
	"strconv"
)

// ApplyEnv overrides file settings with CODELAB_* environment variables
func ApplyEnv(cfg *LocalConfig) {
	cfg.Daemon.Port = getEnvInt("CODELAB_PORT", cfg.Daemon.Port)
	cfg.Daemon.Bind = getEnv("CODELAB_BIND", cfg.Daemon.Bind)
	cfg.Daemon.LogLevel = getEnv("CODELAB_LOG_LEVEL", cfg.Daemon.LogLevel)

	cfg.Catalog.Source = getEnv("CODELAB_CATALOG_SOURCE", cfg.Catalog.Source)
	cfg.Catalog.Path = getEnv("CODELAB_CATALOG_PATH", cfg.Catalog.Path)
	cfg.Catalog.Pack = getEnv("CODELAB_CATALOG_PACK", cfg.Catalog.Pack)

	cfg.Runner.MinDelayMS = getEnvInt("CODELAB_RUNNER_MIN_DELAY_MS", cfg.Runner.MinDelayMS)
	cfg.Runner.MaxDelayMS = getEnvInt("CODELAB_RUNNER_MAX_DELAY_MS", cfg.Runner.MaxDelayMS)
	cfg.Runner.TimeoutSeconds = getEnvInt("CODELAB_RUNNER_TIMEOUT", cfg.Runner.TimeoutSeconds)

	cfg.Events.Enabled = getEnvBool("CODELAB_EVENTS_ENABLED", cfg.Events.Enabled)
	cfg.Events.AMQPURL = getEnv("CODELAB_AMQP_URL", cfg.Events.AMQPURL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
