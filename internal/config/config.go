package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Gemini         GeminiConfig
	OpenAI         OpenAIConfig
	OpenRouter     OpenRouterConfig
	Embedding      EmbeddingConfig
	Recommendation RecommendationConfig
	Redis          RedisConfig
	NATS           NATSConfig
	Telemetry      TelemetryConfig
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		App:            LoadAppConfig(),
		DB:             LoadDBConfig(),
		Gemini:         LoadGeminiConfig(),
		OpenAI:         LoadOpenAIConfig(),
		OpenRouter:     LoadOpenRouterConfig(),
		Embedding:      LoadEmbeddingConfig(),
		Recommendation: LoadRecommendationConfig(),
		Redis:          LoadRedisConfig(),
		NATS:           LoadNATSConfig(),
		Telemetry:      LoadTelemetryConfig(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	e := c.Embedding
	if e.Dimensions != DefaultEmbeddingDimensions {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be %d, got %d", DefaultEmbeddingDimensions, e.Dimensions)
	}
	switch e.Provider {
	case "gemini", "openai", "openrouter":
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", e.Provider)
	}
	if e.BatchSize < 1 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be positive, got %d", e.BatchSize)
	}
	if e.Concurrency < 1 {
		return fmt.Errorf("EMBEDDING_CONCURRENCY must be positive, got %d", e.Concurrency)
	}
	if e.RateLimit <= 0 {
		return fmt.Errorf("EMBEDDING_RATE_LIMIT must be positive, got %v", e.RateLimit)
	}
	if e.RequestTimeout <= 0 {
		return fmt.Errorf("EMBEDDING_REQUEST_TIMEOUT must be positive, got %v", e.RequestTimeout)
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("EMBEDDING_MAX_RETRIES cannot be negative, got %d", e.MaxRetries)
	}
	if e.LockTTL <= 0 {
		return fmt.Errorf("EMBEDDING_LOCK_TTL must be positive, got %v", e.LockTTL)
	}
	if e.MaxInputChars < 1 {
		return fmt.Errorf("EMBEDDING_MAX_INPUT_CHARS must be positive, got %d", e.MaxInputChars)
	}

	r := c.Recommendation
	if r.DefaultMinScore < 0 || r.DefaultMinScore > 3 {
		return fmt.Errorf("RECOMMEND_DEFAULT_MIN_SCORE must be between 0 and 3, got %d", r.DefaultMinScore)
	}
	if r.MaxPageSize < 1 {
		return fmt.Errorf("RECOMMEND_MAX_PAGE_SIZE must be positive, got %d", r.MaxPageSize)
	}
	if r.DefaultPageSize < 1 || r.DefaultPageSize > r.MaxPageSize {
		return fmt.Errorf("RECOMMEND_DEFAULT_PAGE_SIZE must be between 1 and %d, got %d", r.MaxPageSize, r.DefaultPageSize)
	}
	return nil
}
