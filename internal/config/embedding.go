package config

import "time"

const DefaultEmbeddingDimensions = 1536

type EmbeddingConfig struct {
	// Provider is one of "gemini", "openai" or "openrouter".
	Provider   string
	Dimensions int

	BatchSize   int
	BatchDelay  time.Duration
	Concurrency int

	// RateLimit is the number of provider requests allowed per second.
	RateLimit      float64
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// MaxInputChars is where job text is cut before it is sent to the
	// provider. Counted in runes.
	MaxInputChars int

	ScheduleInterval time.Duration
	LockTTL          time.Duration
}

func LoadEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Provider:         getEnvString("EMBEDDING_PROVIDER", "gemini"),
		Dimensions:       getEnvInt("EMBEDDING_DIMENSIONS", DefaultEmbeddingDimensions),
		BatchSize:        getEnvInt("EMBEDDING_BATCH_SIZE", 10),
		BatchDelay:       getEnvDuration("EMBEDDING_BATCH_DELAY", time.Second),
		Concurrency:      getEnvInt("EMBEDDING_CONCURRENCY", 1),
		RateLimit:        getEnvFloat("EMBEDDING_RATE_LIMIT", 2),
		RequestTimeout:   getEnvDuration("EMBEDDING_REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:       getEnvInt("EMBEDDING_MAX_RETRIES", 2),
		RetryBaseDelay:   getEnvDuration("EMBEDDING_RETRY_BASE_DELAY", time.Second),
		RetryMaxDelay:    getEnvDuration("EMBEDDING_RETRY_MAX_DELAY", 30*time.Second),
		MaxInputChars:    getEnvInt("EMBEDDING_MAX_INPUT_CHARS", 8000),
		ScheduleInterval: getEnvDuration("EMBEDDING_SCHEDULE_INTERVAL", 0),
		LockTTL:          getEnvDuration("EMBEDDING_LOCK_TTL", 30*time.Minute),
	}
}
