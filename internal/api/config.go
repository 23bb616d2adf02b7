package api

import "time"

// Config holds API client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://prava.example.com/api".
	BaseURL string

	// Timeout bounds a single HTTP attempt. Default: 15s.
	Timeout time.Duration

	// UserAgent is sent on every request.
	UserAgent string

	Retry RetryConfig
}

// RetryConfig configures retries of idempotent GET requests.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8000/api",
		Timeout:   15 * time.Second,
		UserAgent: "prava-cli",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 300 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
	}
}
