// Package app wires the shared object graph used by the HTTP server and the
// CLI.
package app

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fadilmartias/job-matcher/internal/cache"
	rediscache "github.com/fadilmartias/job-matcher/internal/cache/redis"
	"github.com/fadilmartias/job-matcher/internal/config"
	"github.com/fadilmartias/job-matcher/internal/database"
	"github.com/fadilmartias/job-matcher/internal/logger"
	"github.com/fadilmartias/job-matcher/internal/repository"
	"github.com/fadilmartias/job-matcher/internal/service"
	"github.com/fadilmartias/job-matcher/internal/telemetry"
	"github.com/fadilmartias/job-matcher/internal/usecase"
)

const runLockKey = "job-matcher:embedding-run"

// Core provides config, logging, tracing, storage, the embedding provider
// and both usecases.
var Core = fx.Options(
	fx.Provide(
		config.Load,
		logger.New,
		newDatabase,
		newJobStore,
		newRunStore,
		newRedis,
		newQueryCache,
		newLocker,
		newEmbeddingProvider,
		newEmbeddingUsecase,
		newRecommendationUsecase,
	),
	fx.Invoke(initTracer),
)

// WithZapLogger routes fx lifecycle events through the application logger.
func WithZapLogger() fx.Option {
	return fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	})
}

func initTracer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) error {
	shutdown, err := telemetry.InitTracer(context.Background(), cfg.Telemetry)
	if err != nil {
		return err
	}
	if cfg.Telemetry.Enabled() {
		log.Info("tracing enabled", zap.String("collector", cfg.Telemetry.CollectorURL))
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DB, cfg.App.IsProduction(), log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

func newJobStore(db *gorm.DB) usecase.JobStore {
	return repository.NewJobRepository(db)
}

func newRunStore(db *gorm.DB) usecase.RunStore {
	return repository.NewEmbeddingRunRepository(db)
}

// newRedis returns nil when Redis is not configured.
func newRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*rediscache.Cache, error) {
	if !cfg.Redis.Enabled() {
		log.Info("redis not configured, using in-process run lock and no query cache")
		return nil, nil
	}

	c := rediscache.New(cache.Options{
		DefaultTTL:    cfg.Recommendation.QueryCacheTTL,
		RedisURL:      cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return c.Ping(ctx)
		},
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

func newQueryCache(c *rediscache.Cache) cache.Cache {
	if c == nil {
		return nil
	}
	return c
}

func newLocker(c *rediscache.Cache, cfg *config.Config, log *zap.Logger) usecase.Locker {
	if c == nil {
		return usecase.NewLocalLocker()
	}
	return rediscache.NewLocker(c.Client(), runLockKey, cfg.Embedding.LockTTL, log)
}

func newEmbeddingProvider(cfg *config.Config, log *zap.Logger) (service.EmbeddingProvider, error) {
	provider, err := service.NewEmbeddingProvider(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	log.Info("embedding provider ready",
		zap.String("provider", provider.Name()),
		zap.Int("dimensions", cfg.Embedding.Dimensions))
	return provider, nil
}

func newEmbeddingUsecase(lc fx.Lifecycle, jobs usecase.JobStore, runs usecase.RunStore, provider service.EmbeddingProvider, locker usecase.Locker, cfg *config.Config, log *zap.Logger) *usecase.EmbeddingUsecase {
	uc := usecase.NewEmbeddingUsecase(jobs, runs, provider, locker, cfg.Embedding, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			uc.Close()
			return nil
		},
	})
	return uc
}

func newRecommendationUsecase(jobs usecase.JobStore, provider service.EmbeddingProvider, queryCache cache.Cache, cfg *config.Config, log *zap.Logger) *usecase.RecommendationUsecase {
	return usecase.NewRecommendationUsecase(jobs, provider, queryCache, cfg.Recommendation, cfg.Embedding, log)
}
