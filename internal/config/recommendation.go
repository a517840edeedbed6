package config

import "time"

type RecommendationConfig struct {
	DefaultMinScore int
	DefaultPageSize int
	MaxPageSize     int
	QueryCacheTTL   time.Duration
}

func LoadRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		DefaultMinScore: getEnvInt("RECOMMEND_DEFAULT_MIN_SCORE", 1),
		DefaultPageSize: getEnvInt("RECOMMEND_DEFAULT_PAGE_SIZE", 5),
		MaxPageSize:     getEnvInt("RECOMMEND_MAX_PAGE_SIZE", 50),
		QueryCacheTTL:   getEnvDuration("QUERY_CACHE_TTL", 24*time.Hour),
	}
}
