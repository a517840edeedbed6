package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/config"
)

// OpenRouterService talks to any OpenAI-compatible /embeddings endpoint;
// OpenRouter is the default.
type OpenRouterService struct {
	client     *resty.Client
	model      string
	dimensions int
}

func NewOpenRouterService(cfg config.OpenRouterConfig, dimensions int) (*OpenRouterService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &OpenRouterService{
		client:     client,
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

func (s *OpenRouterService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmptyInput("text for embedding cannot be empty", nil)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":      s.model,
			"input":      []string{text},
			"dimensions": s.dimensions,
		}).
		Post("/embeddings")
	if err != nil {
		return nil, apperrors.Provider("openrouter request failed", err, isRetryableTransportError(err))
	}

	body := resp.String()
	if resp.StatusCode() != 200 {
		message := gjson.Get(body, "error.message").String()
		if message == "" {
			message = resp.Status()
		}
		return nil, apperrors.Provider(
			fmt.Sprintf("openrouter error (status %d)", resp.StatusCode()),
			fmt.Errorf("%s", message),
			isRetryableStatus(resp.StatusCode()),
		)
	}

	values := gjson.Get(body, "data.0.embedding")
	if !values.IsArray() {
		return nil, apperrors.Provider("openrouter returned a malformed response", fmt.Errorf("no embeddings returned"), false)
	}

	items := values.Array()
	embedding := make([]float32, len(items))
	for i, v := range items {
		if v.Type != gjson.Number {
			return nil, apperrors.Provider("openrouter returned a malformed response",
				fmt.Errorf("non-numeric embedding value at index %d", i), false)
		}
		embedding[i] = float32(v.Float())
	}
	if len(embedding) == 0 {
		return nil, apperrors.Provider("openrouter returned a malformed response", fmt.Errorf("embedding vector is empty"), false)
	}
	return embedding, nil
}
