package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/config"
)

type OpenAIService struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

func NewOpenAIService(cfg config.OpenAIConfig, dimensions int) (*OpenAIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: dimensions,
	}, nil
}

func (s *OpenAIService) Name() string {
	return "openai"
}

func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmptyInput("text for embedding cannot be empty", nil)
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      s.model,
		Dimensions: s.dimensions,
	})
	if err != nil {
		return nil, apperrors.Provider("openai create embeddings failed", err, isRetryableOpenAIError(err))
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperrors.Provider("openai returned a malformed response", fmt.Errorf("no embeddings returned"), false)
	}
	return resp.Data[0].Embedding, nil
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return isRetryableStatus(reqErr.HTTPStatusCode)
	}
	return isRetryableTransportError(err)
}
