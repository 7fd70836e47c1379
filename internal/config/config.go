// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the PDU MCP server.
type Config struct {
	PDUBaseURL        string        // PDU_BASE_URL, default "http://192.168.0.100"
	PDUUsername       string        // PDU_USERNAME, default "admin"
	PDUPassword       string        // PDU_PASSWORD, default "admin"
	PDUOutletCount    int           // PDU_OUTLET_COUNT, default 8
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms (10s)

	UDPHost    string        // PDU_UDP_HOST, default "" (derived from PDU_BASE_URL host)
	UDPPort    int           // PDU_UDP_PORT, default 50000
	UDPTimeout time.Duration // UDP_TIMEOUT_MS, default 2000ms (2s)

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		PDUBaseURL:        getEnvString("PDU_BASE_URL", "http://192.168.0.100"),
		PDUUsername:       getEnvString("PDU_USERNAME", "admin"),
		PDUPassword:       getEnvString("PDU_PASSWORD", "admin"),
		PDUOutletCount:    getEnvInt("PDU_OUTLET_COUNT", 8),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 10000),

		UDPHost:    getEnvString("PDU_UDP_HOST", ""),
		UDPPort:    getEnvInt("PDU_UDP_PORT", 50000),
		UDPTimeout: getEnvDurationMs("UDP_TIMEOUT_MS", 2000),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
