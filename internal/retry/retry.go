package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/FranLegon/cloud-drives-search/internal/logger"
)

// Policy is an exponential backoff with jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether an error is worth another attempt. Nil
	// retries every error.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, the error is not retryable, the attempts
// are used up or ctx is done.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt == attempts || (p.Retryable != nil && !p.Retryable(err)) {
			return err
		}

		delay := p.BaseDelay * (1 << (attempt - 1))
		if delay > 0 {
			delay += time.Duration(rand.Int63n(int64(delay/2) + 1)) // jitter
		}
		logger.WarningTagged([]string{"retry"}, "Attempt %d failed: %v. Retrying in %v...", attempt, err, delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
