package config

type GeminiConfig struct {
	APIKey string
	Model  string
}

func LoadGeminiConfig() GeminiConfig {
	return GeminiConfig{
		APIKey: getEnvString("GEMINI_API_KEY", ""),
		Model:  getEnvString("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
	}
}
