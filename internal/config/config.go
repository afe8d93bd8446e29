// Package config loads the execution core's environment-driven
// settings, grounded on internal/config/config.go's getEnv/getEnvAsInt
// Load() idiom but trimmed to the surfaces this module owns — the HTTP
// server, SMTP fallback credentials, the in-memory-DB toggle, logging,
// and metrics.
package config

import (
	"os"
	"strconv"
)

// Config holds the ambient settings for the server process.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	LogLevel    string

	SMTPServer   string
	SMTPPort     int
	EmailUser    string
	EmailPass    string
	ForceInMemoryDB bool
}

// Load reads configuration from the environment, applying the same
// defaults the teacher's Load() uses for unset values.
func Load() Config {
	return Config{
		HTTPAddr:    getEnv("AUTOFLOW_HTTP_ADDR", ":8080"),
		MetricsAddr: getEnv("AUTOFLOW_METRICS_ADDR", ":9090"),
		LogLevel:    getEnv("AUTOFLOW_LOG_LEVEL", "info"),

		SMTPServer: getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:   getEnvAsInt("SMTP_PORT", 587),
		EmailUser:  getEnv("EMAIL_USER", ""),
		EmailPass:  getEnv("EMAIL_PASSWORD", ""),

		ForceInMemoryDB: getEnvAsBool("FORCE_IN_MEMORY_DB", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
