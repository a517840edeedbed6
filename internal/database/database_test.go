package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fadilmartias/job-matcher/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DBConfig{
		Host:            "db.internal",
		Port:            "5433",
		User:            "matcher",
		Password:        "secret",
		Name:            "jobs",
		SSLMode:         "require",
		TimeZone:        "UTC",
		ConnMaxLifetime: time.Minute,
	}

	assert.Equal(t,
		"host=db.internal user=matcher password=secret dbname=jobs port=5433 sslmode=require TimeZone=UTC",
		DSN(cfg))
}
