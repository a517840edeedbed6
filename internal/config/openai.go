package config

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func LoadOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  getEnvString("OPENAI_API_KEY", ""),
		BaseURL: getEnvString("OPENAI_BASE_URL", ""),
		Model:   getEnvString("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
	}
}
