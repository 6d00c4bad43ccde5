package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFirst returns the first of keys whose value is set and not blank.
func LookupFirst(keys ...string) (string, bool) {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value, true
		}
	}
	return "", false
}

// GetEnvAsString retrieves an environment variable or returns a default value
func GetEnvAsString(key string, defaultVal string) string {
	if value, ok := LookupFirst(key); ok {
		return value
	}
	return defaultVal
}

// GetEnvAsInt retrieves an environment variable and converts it to an integer
func GetEnvAsInt(key string, defaultVal int) int {
	if value, ok := LookupFirst(key); ok {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultVal
}

func GetEnvAsInt64(key string, defaultVal int64) int64 {
	if value, ok := LookupFirst(key); ok {
		if result, err := strconv.ParseInt(value, 10, 64); err == nil {
			return result
		}
	}
	return defaultVal
}

func GetEnvAsFloat(key string, defaultVal float64) float64 {
	if value, ok := LookupFirst(key); ok {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultVal
}

// GetEnvAsDuration accepts Go durations ("15s") or a bare number of milliseconds.
func GetEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	value, ok := LookupFirst(key)
	if !ok {
		return defaultVal
	}
	if result, err := time.ParseDuration(value); err == nil {
		return result
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultVal
}
