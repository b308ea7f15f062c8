package aqi

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound is returned when a city cannot be resolved to a
	// fetchable target.
	ErrTargetNotFound = errors.New("target not found")

	// ErrNoData is returned when a provider responded but carried no usable
	// pollutant data for the requested target.
	ErrNoData = errors.New("no air quality data available")
)

// ConfigError marks an adapter as unusable due to missing or invalid
// configuration (typically an absent API credential). It is never fatal to
// the process; the scheduler backs the adapter off for a long cooldown.
type ConfigError struct {
	Adapter string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("adapter %s misconfigured: %s", e.Adapter, e.Reason)
}

// UpstreamError wraps a transient provider failure (network error, non-2xx
// status, malformed payload). It is retryable on the next scheduler cycle.
type UpstreamError struct {
	Adapter string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("adapter %s upstream failure: %v", e.Adapter, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
