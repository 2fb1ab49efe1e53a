package task

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs op up to retries+1 times with a constant sleep between attempts.
// Used for RPC calls that return transient inconsistencies (e.g. a receipt
// visible before its block).
func Retry[T any](ctx context.Context, retries uint64, sleep time.Duration, desc string, op func() (T, error)) (T, error) {
	var result T

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(sleep), retries),
		ctx,
	)

	err := backoff.Retry(func() error {
		var err error
		result, err = op()
		return err
	}, bo)
	if err != nil {
		return result, fmt.Errorf("%s failed after %d attempts: %w", desc, retries+1, err)
	}
	return result, nil
}
