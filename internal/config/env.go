package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration aliases time.Duration so Config fields read as durations.
type Duration = time.Duration

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// Malformed or non-positive values fall back rather than failing startup.
func durationEnvOrDefault(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func intEnvOrDefault(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}

func boolEnvOrDefault(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	switch {
	case raw == "":
		return fallback
	case raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes"):
		return true
	case raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no"):
		return false
	}
	return fallback
}
