package config

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnvString("REDIS_ADDR", ""),
		Password: getEnvString("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
