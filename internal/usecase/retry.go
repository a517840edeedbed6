package usecase

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/service"
)

type retryPolicy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// embedOnce makes a single provider call bounded by the request timeout. A
// timeout is reported like any other retryable provider failure.
func embedOnce(ctx context.Context, provider service.EmbeddingProvider, text string, timeout time.Duration) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vec, err := provider.Embed(callCtx, text)
	if err == nil {
		return vec, nil
	}
	if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return nil, apperrors.Provider(provider.Name()+": request timed out", err, true)
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		return nil, apperrors.Provider(provider.Name()+": embed failed", err, false)
	}
	return nil, err
}

// embedWithRetry retries retryable provider failures with exponential
// backoff. It gives up early when ctx is done.
func embedWithRetry(ctx context.Context, provider service.EmbeddingProvider, text string, policy retryPolicy, logger *zap.Logger) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.backoff(attempt)
			logger.Debug("retrying embedding request",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", policy.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vec, err := embedOnce(ctx, provider, text, policy.RequestTimeout)
		if err == nil {
			return vec, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !apperrors.IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}
