package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_NextDelay(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, 100 * time.Millisecond},
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1 * time.Second}, // 1600ms, capped
		{10, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_WithJitter(t *testing.T) {
	backoff := DefaultLoadBackoff()

	// attempt 2: 800ms ±10%
	for i := 0; i < 100; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 720*time.Millisecond)
		assert.LessOrEqual(t, delay, 880*time.Millisecond)
	}
}

func TestRetry(t *testing.T) {
	errTransient := errors.New("connection reset")
	errFatal := errors.New("bad json")
	retryable := func(err error) bool { return errors.Is(err, errTransient) }
	noWait := &FixedBackoff{Delay: time.Millisecond}

	tests := []struct {
		name      string
		attempts  int
		results   []error
		wantErr   error
		wantCalls int
	}{
		{name: "first try", attempts: 3, results: []error{nil}, wantCalls: 1},
		{name: "succeeds after transient", attempts: 3, results: []error{errTransient, errTransient, nil}, wantCalls: 3},
		{name: "gives up", attempts: 2, results: []error{errTransient, errTransient, nil}, wantErr: errTransient, wantCalls: 2},
		{name: "fatal stops", attempts: 5, results: []error{errFatal, nil}, wantErr: errFatal, wantCalls: 1},
		{name: "zero attempts runs once", attempts: 0, results: []error{errTransient}, wantErr: errTransient, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, noWait, retryable, func(context.Context) error {
				err := tt.results[calls]
				calls++
				return err
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRetry_StopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errTransient := errors.New("timeout")

	calls := 0
	err := Retry(ctx, 10, &FixedBackoff{Delay: time.Hour}, nil, func(context.Context) error {
		calls++
		cancel()
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}
