package config

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func LoadOpenRouterConfig() OpenRouterConfig {
	return OpenRouterConfig{
		APIKey:  getEnvString("OPENROUTER_API_KEY", ""),
		BaseURL: getEnvString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:   getEnvString("OPENROUTER_EMBEDDING_MODEL", "openai/text-embedding-3-small"),
	}
}
