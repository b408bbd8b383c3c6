package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// GetEnvOrDefault retrieves an environment variable or returns a default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvUint16 retrieves an environment variable as a uint16 (useful for ports).
// Returns the default value if not set or invalid.
func GetEnvUint16(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseUint(value, 10, 16); err == nil {
			return uint16(intVal)
		}
	}
	return defaultValue
}

// GetEnvBool retrieves an environment variable as a boolean.
// Accepts "true", "1", "yes", "on" (case-insensitive) for true.
// Returns the default value if not set or invalid.
func GetEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}

// parseDurationISO8601 tries to parse duration as ISO8601 first, then Go duration.
// An empty string is a zero duration.
func parseDurationISO8601(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	isoDuration, err := duration.Parse(s)
	if err == nil {
		return isoDuration.ToTimeDuration(), nil
	}

	return time.ParseDuration(s)
}
