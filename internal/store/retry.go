package store

import (
	"context"
	"time"

	"userstream/internal/logger"
)

// WithRetry invokes fn up to attempts times, sleeping delay between
// attempts, and returns nil on the first success. On exhaustion the last
// observed error is returned unwrapped.
//
// The policy is failure-kind agnostic: any non-nil error triggers a retry,
// including integrity errors that will never succeed. Callers composing this
// around writes should make those writes idempotent. A canceled context
// aborts the inter-attempt wait and surfaces the last error immediately.
func WithRetry(ctx context.Context, attempts int, delay time.Duration, log logger.Logger, fn func() error) error {
	if log == nil {
		log = logger.Nop
	}
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Printf("succeeded on attempt %d", attempt)
			}
			return nil
		}

		lastErr = err
		log.Printf("attempt %d failed: %v", attempt, err)

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			log.Printf("retry abandoned: %v", ctx.Err())
			return lastErr
		}
	}

	log.Printf("all %d attempts failed", attempts)
	return lastErr
}
