// Package retry backs off on flaky external dependencies, currently the
// startup database ping while Postgres is still coming up.
package retry

import (
	"context"
	"time"
)

// DoWithRetry runs fn up to attempts times, doubling the delay between
// failures starting from baseDelay. Context cancellation wins over both the
// wait and the next attempt; the last attempt's error is returned.
func DoWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err = fn(); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
