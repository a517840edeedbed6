package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/dto"
	"github.com/fadilmartias/job-matcher/internal/telemetry"
)

var tracer = telemetry.GetTracer("job-matcher/scheduler")

// Generator is the part of the embedding usecase the scheduler drives.
type Generator interface {
	GenerateMissing(ctx context.Context) (*dto.BatchSummary, error)
}

// EmbeddingScheduler runs a generation pass on a fixed interval so postings
// created by the dashboard get embedded without an admin trigger.
type EmbeddingScheduler struct {
	generator Generator
	interval  time.Duration
	logger    *zap.Logger

	mutex    sync.Mutex
	isActive bool
}

func NewEmbeddingScheduler(generator Generator, interval time.Duration, logger *zap.Logger) *EmbeddingScheduler {
	return &EmbeddingScheduler{
		generator: generator,
		interval:  interval,
		logger:    logger,
	}
}

func (s *EmbeddingScheduler) Enabled() bool {
	return s.interval > 0
}

// Start runs one pass immediately and then one per tick until ctx is done.
// It returns nil at once when the scheduler is disabled or already running.
func (s *EmbeddingScheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("embedding scheduler disabled")
		return nil
	}

	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	s.isActive = true
	s.mutex.Unlock()
	defer s.Stop()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("embedding scheduler started", zap.Duration("interval", s.interval))
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *EmbeddingScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isActive = false
}

func (s *EmbeddingScheduler) tick(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "EmbeddingScheduler.tick")
	defer span.End()

	summary, err := s.generator.GenerateMissing(ctx)
	switch {
	case apperrors.IsType(err, apperrors.ErrTypeConflict):
		s.logger.Info("skipping scheduled embedding run, another run is in progress")
	case err != nil:
		span.RecordError(err)
		s.logger.Error("scheduled embedding run failed", zap.Error(err))
	default:
		span.SetAttributes(
			telemetry.Int("succeeded", summary.Succeeded),
			telemetry.Int("failed", summary.Failed))
	}
}
