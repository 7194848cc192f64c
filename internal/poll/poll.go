// Package poll provides bounded polling of cluster state.
//
// The [Until] function repeatedly invokes a probe until it reports the
// awaited condition, sleeping a fixed interval between attempts and failing
// with a [TimeoutError] once the wait budget is exhausted. It is used to
// wait for catalog sources, package manifests, and operator pods during
// cluster setup.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Probe reports whether the awaited condition currently holds. A non-nil
// error aborts the poll immediately; probes are not retried on error.
type Probe func(ctx context.Context) (bool, error)

// TimeoutError reports that a condition did not hold within the wait budget.
type TimeoutError struct {
	// Awaited describes the condition that was being waited for.
	Awaited string
	// Attempts is the number of probe calls issued before giving up.
	Attempts int
	// Waited is the configured wait budget.
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s after %d attempts (%s budget)", e.Awaited, e.Attempts, e.Waited)
}

// IsTimeout reports whether err is, or wraps, a polling timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Until probes the awaited condition until it holds or the wait budget runs
// out. The probe is invoked immediately, then once more after each interval.
// With N = maxWait/interval, at most N+1 probes are issued; the poll fails
// with a *TimeoutError once the final probe reports the condition still does
// not hold. Context cancellation is respected between attempts.
func Until(ctx context.Context, awaited string, maxWait, interval time.Duration, probe Probe) error {
	if interval <= 0 {
		return fmt.Errorf("poll: non-positive interval %v waiting for %s", interval, awaited)
	}

	maxAttempts := int(maxWait / interval)

	for attempt := 0; ; attempt++ {
		ok, err := probe(ctx)
		if err != nil {
			return fmt.Errorf("probing %s: %w", awaited, err)
		}
		if ok {
			return nil
		}

		if attempt >= maxAttempts {
			return &TimeoutError{Awaited: awaited, Attempts: attempt + 1, Waited: maxWait}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", awaited, ctx.Err())
		case <-time.After(interval):
		}
	}
}
