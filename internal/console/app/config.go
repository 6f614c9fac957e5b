package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL string // Required: upstream Brain Hope admin API base URL

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./console.db)
	MasterKeyPath        string        // Optional: path to master encryption key file (tokens at rest)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	NegotiateTimeout     time.Duration // Shared deadline for upstream login negotiation (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		APIBaseURL:           os.Getenv("CONSOLE_API_BASE_URL"),
		DatabaseFile:         getEnvOrDefault("CONSOLE_DATABASE_FILE", "console.db"),
		MasterKeyPath:        os.Getenv("CONSOLE_MASTER_KEY_PATH"), // Optional
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		NegotiateTimeout:     getEnvDurationOrDefault("CONSOLE_NEGOTIATE_TIMEOUT", 10*time.Second),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://braincancer.runasp.net"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
