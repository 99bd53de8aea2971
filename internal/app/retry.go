package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/salonaudit/internal/validate"
)

// JobState is the terminal state of a job.
type JobState string

const (
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// JobResult describes how a job ended. Err holds the raw error for logs and
// Message the friendly text for the owner.
type JobResult struct {
	State    JobState
	Attempts int
	Err      error
	Message  string
}

const (
	defaultMaxAttempts = 2
	retryBaseDelay     = 2 * time.Second
	retryMaxDelay      = 20 * time.Second
)

// retryDelay is replaced in tests.
var retryDelay = func(attempt int) time.Duration {
	d := retryBaseDelay << (attempt - 1)
	if d > retryMaxDelay {
		d = retryMaxDelay
	}
	return d
}

// RunWithRetry runs fn up to maxAttempts times with exponential backoff.
// Validation errors end the job immediately, as does a cancelled context.
func RunWithRetry(ctx context.Context, maxAttempts int, fn func(ctx context.Context) error) JobResult {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	var lastErr error
	attempt := 0
	for attempt < maxAttempts {
		attempt++
		lastErr = fn(ctx)
		if lastErr == nil {
			return JobResult{State: JobSucceeded, Attempts: attempt}
		}
		if _, ok := validate.AsValidationError(lastErr); ok {
			break
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			break
		}
		if attempt >= maxAttempts {
			break
		}
		delay := retryDelay(attempt)
		log.Warn().Err(lastErr).Int("attempt", attempt).Int("max", maxAttempts).Dur("delay", delay).Msg("job failed; retrying")
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			return JobResult{State: JobFailed, Attempts: attempt, Err: lastErr, Message: FailureMessage(lastErr)}
		case <-time.After(delay):
		}
	}
	return JobResult{State: JobFailed, Attempts: attempt, Err: lastErr, Message: FailureMessage(lastErr)}
}
