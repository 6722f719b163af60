// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration for the policyai CLI and MCP
// server entrypoints.
type Config struct {
	// Completion provider settings.
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Apply/generate defaults.
	RequestTimeout time.Duration
	MaxRetries     int

	// Rate limiting.
	RateLimitPerMinute int

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool // Use HTTP instead of HTTPS for OTEL exporter (default: false).
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if any environment variable contains an unparseable value,
// or if the result fails Validate (OPENAI_API_KEY missing, or a negative or
// non-positive numeric setting). Other missing variables use sensible defaults.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIModel:   envStr("POLICYAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: envStr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OTELEndpoint:  envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:   envStr("OTEL_SERVICE_NAME", "policyai"),
		LogLevel:      envStr("POLICYAI_LOG_LEVEL", "info"),
	}

	cfg.MaxRetries, errs = collectInt(errs, "POLICYAI_MAX_RETRIES", 3)
	cfg.RateLimitPerMinute, errs = collectInt(errs, "POLICYAI_RATE_LIMIT_PER_MINUTE", 60)

	cfg.OTELInsecure, errs = collectBool(errs, "OTEL_EXPORTER_OTLP_INSECURE", false)

	cfg.RequestTimeout, errs = collectDuration(errs, "POLICYAI_REQUEST_TIMEOUT", 30*time.Second)

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return Config{}, fmt.Errorf("config: invalid environment variables:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// collectInt parses an int env var, appending any error to the accumulator.
func collectInt(errs []error, key string, fallback int) (int, []error) {
	v, err := envInt(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// collectBool parses a bool env var, appending any error to the accumulator.
func collectBool(errs []error, key string, fallback bool) (bool, []error) {
	v, err := envBool(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// collectDuration parses a duration env var, appending any error to the accumulator.
func collectDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v, err := envDuration(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	var errs []error

	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("config: OPENAI_API_KEY is required"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("config: POLICYAI_MAX_RETRIES must not be negative"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("config: POLICYAI_RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("config: POLICYAI_REQUEST_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
