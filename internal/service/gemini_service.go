package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/config"
)

type GeminiService struct {
	Client     *genai.Client
	Model      string
	Dimensions int32
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig, dimensions int) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiService{
		Client:     client,
		Model:      cfg.Model,
		Dimensions: int32(dimensions),
	}, nil
}

func (s *GeminiService) Name() string {
	return "gemini"
}

func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmptyInput("text for embedding cannot be empty", nil)
	}

	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := s.Client.Models.EmbedContent(ctx, s.Model, content, &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: genai.Ptr(s.Dimensions),
	})
	if err != nil {
		return nil, apperrors.Provider("gemini embed content failed", err, isRetryableGeminiError(err))
	}

	embeddings, err := validateGeminiResponse(result)
	if err != nil {
		return nil, apperrors.Provider("gemini returned a malformed response", err, false)
	}
	return embeddings, nil
}

func isRetryableGeminiError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return isRetryableStatus(apiErrPtr.Code)
	}
	return isRetryableTransportError(err)
}

func validateGeminiResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}

	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := resp.Embeddings[0].Values
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	return embeddings, nil
}
