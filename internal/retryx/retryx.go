// Package retryx is the single retry policy shared by every component that
// talks to an upstream service: bounded attempts, exponential backoff with a
// cap, and opt-in retryability via Transient.
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const maxDelay = 10 * time.Second

// Do runs f up to attempts times, sleeping base, 2*base, 4*base ... (capped
// at 10s) between tries. Only errors marked with Transient are retried;
// anything else aborts immediately and is returned as-is.
func Do(ctx context.Context, attempts int, base time.Duration, f func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := retry.WithMaxRetries(uint64(attempts-1),
		retry.WithCappedDuration(maxDelay, retry.NewExponential(base)))
	return retry.Do(ctx, b, f)
}

// Transient marks err as retryable for Do.
func Transient(err error) error {
	return retry.RetryableError(err)
}
