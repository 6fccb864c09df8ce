package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const defaultMaxAttempts = 3

// RunWithRetry executes fn, retrying with bounded exponential backoff when
// the failure is a transient store error or a duplicate-key conflict (the
// read-max-then-insert race resolves itself on re-read). Any other error
// propagates immediately.
func RunWithRetry(ctx context.Context, fn func() error) error {
	operation := func() (struct{}, error) {
		err := fn()
		if err == nil {
			return struct{}{}, nil
		}
		if IsTransientErr(err) || IsDuplicateKeyErr(err) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 20 * time.Millisecond
	expo.MaxInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(defaultMaxAttempts),
	)
	return err
}
