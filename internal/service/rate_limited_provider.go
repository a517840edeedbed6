package service

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
)

// RateLimitedProvider paces calls to the wrapped provider so the whole
// process stays under the provider's request quota, however many workers
// share it.
type RateLimitedProvider struct {
	next   EmbeddingProvider
	bucket *rate.Limiter
}

func NewRateLimitedProvider(next EmbeddingProvider, perSecond float64) *RateLimitedProvider {
	return &RateLimitedProvider{
		next:   next,
		bucket: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (p *RateLimitedProvider) Name() string {
	return p.next.Name()
}

func (p *RateLimitedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.bucket.Wait(ctx); err != nil {
		return nil, apperrors.Provider(fmt.Sprintf("%s: waiting for rate limit", p.next.Name()), err, false)
	}
	return p.next.Embed(ctx, text)
}
