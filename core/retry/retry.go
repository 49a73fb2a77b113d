package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// transientMarkers are the substrings that identify a failure as transient.
// The remote APIs return no structured error codes, so classification is by
// message content. All matching rules live here so they stay centralized and
// testable rather than scattered per call site.
var transientMarkers = []string{
	"timeout",
	"timed out",
	"rate limit",
	"throttled",
	"temporary",
	"network",
	"connection",
	"graphql query error",
}

// ErrExhausted marks a transient failure that outlived the attempt cap.
// It wraps the last observed error.
var ErrExhausted = errors.New("retries exhausted")

// IsTransient reports whether the error message identifies a failure worth
// retrying. Validation failures and anything else unrecognized are terminal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Do runs op, retrying transient failures with bounded exponential backoff.
// Terminal failures are returned immediately without consuming further
// attempts. When the attempt cap is exceeded, the last observed error is
// returned wrapped in ErrExhausted.
func Do(ctx context.Context, l *zap.Logger, name string, cfg Config, op func() error) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	base := time.Duration(cfg.BaseDelayMS) * time.Millisecond
	if base <= 0 {
		base = DefaultBaseDelay
	}
	maxDelay := time.Duration(cfg.MaxDelayMS) * time.Millisecond
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := base << (attempt - 1)
			if delay > maxDelay {
				delay = maxDelay
			}
			l.Warn("Retrying after transient failure",
				zap.String("op", name),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(last))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		last = op()
		if last == nil {
			return nil
		}
		if !IsTransient(last) {
			return last
		}
	}

	return fmt.Errorf("%w after %d attempts for %s: %v", ErrExhausted, attempts, name, last)
}
