package api

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RetryDoer is a decorator that retries idempotent requests on transient
// errors with exponential backoff and jitter. Non-GET requests pass through
// untouched, so progress updates and quiz submissions are sent exactly once.
type RetryDoer struct {
	inner  Doer
	config RetryConfig
}

// WithRetry wraps a Doer with retry logic.
func WithRetry(d Doer, cfg RetryConfig) Doer {
	return &RetryDoer{inner: d, config: cfg}
}

func (r *RetryDoer) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method != http.MethodGet || r.config.MaxAttempts <= 1 {
		return r.inner.Do(ctx, req)
	}

	if RequestIDFrom(ctx) == "" {
		ctx = WithRequestID(ctx, uuid.NewString())
	}

	var lastErr error
	for attempt := range r.config.MaxAttempts {
		resp, err := r.inner.Do(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return nil, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		select {
		case <-ctx.Done():
			return nil, &Error{Err: ctx.Err()}
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

// shouldRetry determines if an error is retryable.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}

// backoff computes the wait duration for the given attempt.
func (r *RetryDoer) backoff(attempt int, err error) time.Duration {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
