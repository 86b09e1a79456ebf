package utils

import (
	"os"
	"strconv"
	"time"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt parses the variable as a positive integer. Missing or invalid values yield the fallback.
func GetenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		LogWarn("Invalid integer environment value, using default", map[string]interface{}{"key": key, "value": value, "default": fallback})
		return fallback
	}
	return n
}

// GetenvDuration parses the variable with time.ParseDuration (e.g. "5m").
func GetenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		LogWarn("Invalid duration environment value, using default", map[string]interface{}{"key": key, "value": value, "default": fallback.String()})
		return fallback
	}
	return d
}
