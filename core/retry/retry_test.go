package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{
			name:      "GraphQL timeout",
			err:       errors.New("GraphQL query error: timeout"),
			transient: true,
		},
		{
			name:      "rate limit",
			err:       errors.New("429: Rate limit exceeded for shop"),
			transient: true,
		},
		{
			name:      "connection reset",
			err:       errors.New("read tcp: connection reset by peer"),
			transient: true,
		},
		{
			name:      "temporary failure",
			err:       errors.New("Temporary failure in name resolution"),
			transient: true,
		},
		{
			name:      "throttled",
			err:       errors.New("Throttled"),
			transient: true,
		},
		{
			name:      "validation message",
			err:       errors.New("title: Title can't be blank"),
			transient: false,
		},
		{
			name:      "duplicate",
			err:       errors.New("sku: SKU has already been taken"),
			transient: false,
		},
		{
			name:      "nil",
			err:       nil,
			transient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
		})
	}
}

func TestDo_TransientRetriedToCap(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelayMS: 1, MaxDelayMS: 2}

	calls := 0
	err := Do(context.Background(), zap.NewNop(), "test", cfg, func() error {
		calls++
		return errors.New("GraphQL query error: timeout")
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestDo_TerminalConsumesOneAttempt(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelayMS: 1}

	calls := 0
	err := Do(context.Background(), zap.NewNop(), "test", cfg, func() error {
		calls++
		return errors.New("Title can't be blank")
	})

	assert.Equal(t, 1, calls)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestDo_TransientThenSuccess(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelayMS: 1}

	calls := 0
	err := Do(context.Background(), zap.NewNop(), "test", cfg, func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("network error: %s", "connection refused")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_CancelledBetweenAttempts(t *testing.T) {
	cfg := Config{MaxAttempts: 3, BaseDelayMS: 50}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	errCh := make(chan error, 1)
	go func() {
		errCh <- Do(ctx, zap.NewNop(), "test", cfg, func() error {
			calls++
			if calls == 1 {
				cancel()
			}
			return errors.New("timeout")
		})
	}()

	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
