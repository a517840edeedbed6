package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fadilmartias/job-matcher/internal/config"
	"github.com/fadilmartias/job-matcher/internal/model"
)

func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
		cfg.TimeZone,
	)
}

// Connect opens the pool, makes sure the vector extension exists and, when
// enabled, migrates the tables the matcher owns. The caller closes it.
func Connect(ctx context.Context, cfg config.DBConfig, production bool, logger *zap.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if production {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pgDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	pgDB.SetMaxIdleConns(cfg.MaxIdleConns)
	pgDB.SetMaxOpenConns(cfg.MaxOpenConns)
	pgDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := pgDB.PingContext(ctx); err != nil {
		_ = pgDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		_ = pgDB.Close()
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(&model.JobPosting{}, &model.EmbeddingRun{}); err != nil {
			_ = pgDB.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("database migrated")
	}

	logger.Info("connected to database",
		zap.String("host", cfg.Host),
		zap.String("name", cfg.Name))
	return db, nil
}

func Close(db *gorm.DB) error {
	pgDB, err := db.DB()
	if err != nil {
		return err
	}
	return pgDB.Close()
}
