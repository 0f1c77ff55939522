// Package config reads the settings of the reflow binaries from the
// environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DefaultMaxFileSize is the upload limit when REFLOW_MAX_BYTES is unset
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// Config holds the boundary settings. The conversion engine itself is
// configured through reflow options.
type Config struct {
	ServerPort     string
	MaxFileSize    int64
	LogLevel       string
	AllowedOrigins []string
}

// Load builds a Config from environment variables, falling back to
// defaults for anything unset or unparsable.
func Load() *Config {
	return &Config{
		// PaaS hosts provide the port via PORT; SERVER_PORT is kept for local use
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:    getEnvInt64OrDefault("REFLOW_MAX_BYTES", DefaultMaxFileSize),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnvOrDefault("REFLOW_ALLOWED_ORIGINS", "*")),
	}
}

// SlogLevel maps LogLevel to a slog level. Unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger on stderr at the configured level
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()}))
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
