package config

import "time"

// TimeoutConfig holds timeout settings for request handling and outbound calls.
// These can be overridden via CLI flags or environment.
type TimeoutConfig struct {
	// Request bounds a whole API request, including every query it issues.
	// Default: 15s
	Request time.Duration `koanf:"request" validate:"gt=0"`

	// Query bounds a single store call. Default: 10s
	Query time.Duration `koanf:"query" validate:"gt=0"`

	// HTTPClient is the timeout for requests to external services (Discord).
	// Default: 30s
	HTTPClient time.Duration `koanf:"http_client" validate:"gt=0"`
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Request:    15 * time.Second,
		Query:      10 * time.Second,
		HTTPClient: 30 * time.Second,
	}
}

// global instance that can be set at startup
var globalTimeouts = DefaultTimeoutConfig()

// SetGlobalTimeouts sets the global timeout configuration
func SetGlobalTimeouts(cfg *TimeoutConfig) {
	globalTimeouts = cfg
}

// GetTimeouts returns the global timeout configuration
func GetTimeouts() *TimeoutConfig {
	return globalTimeouts
}
