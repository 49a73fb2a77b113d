package retry

import "time"

// Config holds configuration for remote-call retries.
type Config struct {
	// MaxAttempts is the total number of attempts per operation.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// BaseDelayMS is the initial backoff delay in milliseconds.
	BaseDelayMS int `mapstructure:"base_delay_ms" default:"1000"`
	// MaxDelayMS caps the backoff delay in milliseconds.
	MaxDelayMS int `mapstructure:"max_delay_ms" default:"8000"`
}

const (
	// DefaultMaxAttempts is used when the configured cap is not positive.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is used when the configured base delay is not positive.
	DefaultBaseDelay = time.Second
	// DefaultMaxDelay is used when the configured delay cap is not positive.
	DefaultMaxDelay = 8 * time.Second
)
