package config

import "time"

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// AutoMigrate creates the jobs and embedding_runs tables. The jobs table is
	// normally owned by the dashboard, so this is meant for local development.
	AutoMigrate bool
}

func LoadDBConfig() DBConfig {
	return DBConfig{
		Host:            getEnvString("DB_HOST", "localhost"),
		Port:            getEnvString("DB_PORT", "5432"),
		User:            getEnvString("DB_USER", "postgres"),
		Password:        getEnvString("DB_PASSWORD", ""),
		Name:            getEnvString("DB_NAME", "jobs"),
		SSLMode:         getEnvString("DB_SSLMODE", "disable"),
		TimeZone:        getEnvString("DB_TIMEZONE", "UTC"),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", false),
	}
}
