package connector

import (
	"context"
	"time"
)

// retryConnect calls connectFn until it succeeds, MaxRetries attempts have
// failed, or ctx is done. The delay grows by Backoff (default 2) up to
// MaxDelay.
func retryConnect[T any](ctx context.Context, cfg *RetryConfig, connectFn func(context.Context) (T, error)) (T, error) {
	var (
		conn T
		err  error
	)

	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	delay := cfg.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}
	backoff := cfg.Backoff
	if backoff < 1 {
		backoff = 2
	}

	for i := 0; i < attempts; i++ {
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * backoff)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}
	return conn, err
}
