package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/job-matcher/internal/config"
)

// EmbeddingProvider turns text into a fixed-length vector with one remote
// call. Implementations keep no state between calls and never retry; a
// failure is returned as an apperrors PROVIDER error whose Retryable flag
// tells the caller whether another attempt makes sense.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// NewEmbeddingProvider builds the configured provider, wrapped in the
// request-rate limiter every caller shares.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config) (EmbeddingProvider, error) {
	var (
		provider EmbeddingProvider
		err      error
	)
	dims := cfg.Embedding.Dimensions

	switch cfg.Embedding.Provider {
	case "gemini":
		provider, err = NewGeminiService(ctx, cfg.Gemini, dims)
	case "openai":
		provider, err = NewOpenAIService(cfg.OpenAI, dims)
	case "openrouter":
		provider, err = NewOpenRouterService(cfg.OpenRouter, dims)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewRateLimitedProvider(provider, cfg.Embedding.RateLimit), nil
}

func isRetryableStatus(code int) bool {
	switch {
	case code == 429: // Rate limit
		return true
	case code >= 500: // Server errors
		return true
	}
	return false
}

func isRetryableTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF")
}
