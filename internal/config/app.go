package config

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string
}

func LoadAppConfig() AppConfig {
	return AppConfig{
		Name:    getEnvString("APP_NAME", "job-matcher"),
		Env:     getEnvString("APP_ENV", "development"),
		Port:    getEnvString("APP_PORT", ":8080"),
		BaseURL: getEnvString("APP_URL", ""),
	}
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}
