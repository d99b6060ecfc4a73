package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

func fastConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:      maxRetries,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		BackoffFactor:   2.0,
		JitterFactor:    0.1,
		LogRetryAttempt: false,
	}
}

func TestRetrySuccessFirstTry(t *testing.T) {
	result, err := Retry(context.Background(), func() (string, error) {
		return "success", nil
	}, fastConfig(3), logging.NoopLogger{})

	require.NoError(t, err)
	assert.Equal(t, "success", result)
}

func TestRetrySuccessAfterFailures(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient failure")
		}
		return attempts, nil
	}, fastConfig(5), logging.NoopLogger{})

	require.NoError(t, err)
	assert.Equal(t, 3, result)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Retry(context.Background(), func() (string, error) {
		attempts++
		return "", errors.New("permanent failure")
	}, fastConfig(2), logging.NoopLogger{})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestRetryShouldRetryPredicate(t *testing.T) {
	fatal := errors.New("fatal")
	cfg := fastConfig(5)
	cfg.ShouldRetry = func(err error, attempt int) bool {
		return !errors.Is(err, fatal)
	}

	attempts := 0
	_, err := Retry(context.Background(), func() (string, error) {
		attempts++
		return "", fatal
	}, cfg, logging.NoopLogger{})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, func() (string, error) {
		return "", errors.New("should not matter")
	}, fastConfig(3), logging.NoopLogger{})

	require.ErrorIs(t, err, context.Canceled)
}

func TestRetryInvalidConfig(t *testing.T) {
	cfg := fastConfig(3)
	cfg.BackoffFactor = 0.5

	_, err := Retry(context.Background(), func() (string, error) {
		return "ok", nil
	}, cfg, logging.NoopLogger{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid retry config")
}

func TestCalculateNextDelay(t *testing.T) {
	next := CalculateNextDelay(time.Second, 2.0, 30*time.Second)
	assert.Equal(t, 2*time.Second, next)

	capped := CalculateNextDelay(20*time.Second, 2.0, 30*time.Second)
	assert.Equal(t, 30*time.Second, capped)
}

func TestCalculateDelayWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 10; i++ {
		d := CalculateDelayWithJitter(base, 0.5)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
	assert.Equal(t, base, CalculateDelayWithJitter(base, 0))
}

func TestRetryFunc(t *testing.T) {
	attempts := 0
	err := RetryFunc(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("again")
		}
		return nil
	}, fastConfig(3), logging.NoopLogger{})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
