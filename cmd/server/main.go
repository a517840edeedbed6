package main

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/app"
	"github.com/fadilmartias/job-matcher/internal/config"
	"github.com/fadilmartias/job-matcher/internal/domain/fiber/handler"
	"github.com/fadilmartias/job-matcher/internal/events"
	"github.com/fadilmartias/job-matcher/internal/middleware"
	"github.com/fadilmartias/job-matcher/internal/scheduler"
	"github.com/fadilmartias/job-matcher/internal/telemetry"
	"github.com/fadilmartias/job-matcher/internal/usecase"
	"github.com/fadilmartias/job-matcher/internal/util"
)

func main() {
	fxApp := fx.New(
		app.Core,
		app.WithZapLogger(),
		fx.Provide(
			newFiberApp,
			newNATSConnection,
		),
		fx.Invoke(
			registerRoutes,
			registerSubscriber,
			startScheduler,
			monitorGoroutines,
			startServer,
		),
	)

	if err := fxApp.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-fxApp.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}

func newFiberApp(cfg *config.Config, logger *zap.Logger) *fiber.App {
	util.SetDevMode(!cfg.App.IsProduction())

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("unhandled request error", zap.String("path", ctx.Path()), zap.Error(err))
			}

			return util.ErrorResponse(ctx, util.ErrorResponseFormat{
				Code:    code,
				Message: message,
			})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !cfg.App.IsProduction(),
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return cfg.App.IsProduction()
		},
	}))
	app.Use(healthcheck.New())

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	return app
}

func registerRoutes(app *fiber.App, recommendations *usecase.RecommendationUsecase, embeddings *usecase.EmbeddingUsecase) {
	handler.NewRecommendHandler(recommendations).RegisterRoutes(app)
	handler.NewEmbeddingHandler(embeddings).RegisterRoutes(app)
}

func startServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info("server running", zap.String("addr", cfg.App.Port))
				if err := app.Listen(cfg.App.Port); err != nil {
					logger.Error("server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// newNATSConnection returns nil when no NATS URL is configured.
func newNATSConnection(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*nats.Conn, error) {
	if !cfg.NATS.Enabled() {
		logger.Info("NATS not configured, job update events disabled")
		return nil, nil
	}

	opts := []nats.Option{
		nats.Timeout(cfg.NATS.ConnTimeout),
		nats.Name(cfg.App.Name),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}
	nc, err := nats.Connect(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return nc.Drain()
		},
	})
	return nc, nil
}

func registerSubscriber(lc fx.Lifecycle, nc *nats.Conn, cfg *config.Config, logger *zap.Logger, embeddings *usecase.EmbeddingUsecase) error {
	if nc == nil {
		return nil
	}
	h := events.NewHandler(logger, nc, telemetry.GetTracer("job-matcher/events"), cfg.NATS, embeddings)
	return h.RegisterSubscriptions(lc)
}

func startScheduler(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, embeddings *usecase.EmbeddingUsecase) {
	s := scheduler.NewEmbeddingScheduler(embeddings, cfg.Embedding.ScheduleInterval, logger)
	if !s.Enabled() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("embedding scheduler failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}

func monitorGoroutines(lc fx.Lifecycle, logger *zap.Logger) {
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ticker := time.NewTicker(1 * time.Minute)
				defer ticker.Stop()

				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						logger.Debug("active goroutines", zap.Int("count", runtime.NumGoroutine()))
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			close(done)
			return nil
		},
	})
}
