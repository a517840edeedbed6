package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/config"
	"github.com/fadilmartias/job-matcher/internal/dto"
	"github.com/fadilmartias/job-matcher/internal/embedding"
	"github.com/fadilmartias/job-matcher/internal/model"
	"github.com/fadilmartias/job-matcher/internal/service"
	"github.com/fadilmartias/job-matcher/internal/telemetry"
)

const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerEvent    = "event"
)

// EmbeddingUsecase brings every active job posting to an embedded state. It
// is the only writer of the embedding column.
type EmbeddingUsecase struct {
	jobs     JobStore
	runs     RunStore
	provider service.EmbeddingProvider
	locker   Locker
	cfg      config.EmbeddingConfig
	retry    retryPolicy
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time

	// background runs started by Submit
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewEmbeddingUsecase(jobs JobStore, runs RunStore, provider service.EmbeddingProvider, locker Locker, cfg config.EmbeddingConfig, logger *zap.Logger) *EmbeddingUsecase {
	if locker == nil {
		locker = NewLocalLocker()
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &EmbeddingUsecase{
		jobs:     jobs,
		runs:     runs,
		provider: provider,
		locker:   locker,
		cfg:      cfg,
		retry: retryPolicy{
			MaxRetries:     cfg.MaxRetries,
			BaseDelay:      cfg.RetryBaseDelay,
			MaxDelay:       cfg.RetryMaxDelay,
			RequestTimeout: cfg.RequestTimeout,
		},
		logger:  logger,
		tracer:  telemetry.GetTracer("job-matcher/usecase/embedding"),
		now:     time.Now,
		baseCtx: baseCtx,
		cancel:  cancel,
	}
}

// GenerateMissing embeds every active job that has no vector yet. Jobs that
// already have one are not selected, so a second run with no intervening
// changes does nothing.
func (uc *EmbeddingUsecase) GenerateMissing(ctx context.Context) (*dto.BatchSummary, error) {
	ctx, span := uc.tracer.Start(ctx, "EmbeddingUsecase.GenerateMissing")
	defer span.End()

	unlock, err := uc.locker.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return uc.generateMissing(ctx)
}

func (uc *EmbeddingUsecase) generateMissing(ctx context.Context) (*dto.BatchSummary, error) {
	jobs, err := uc.jobs.FindJobsMissingEmbedding(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to select jobs missing embeddings", err)
	}
	uc.logger.Info("selected jobs missing embeddings", zap.Int("count", len(jobs)))

	return uc.process(ctx, jobs, nil), nil
}

// Reembed clears the stored vector of each job and embeds it again through
// the same path as GenerateMissing. Unknown or deleted ids are reported as
// failed with reason notFound.
func (uc *EmbeddingUsecase) Reembed(ctx context.Context, ids []uuid.UUID) (*dto.BatchSummary, error) {
	ctx, span := uc.tracer.Start(ctx, "EmbeddingUsecase.Reembed")
	defer span.End()

	if len(ids) == 0 {
		return nil, apperrors.InvalidRequest("at least one job id is required", nil)
	}

	unlock, err := uc.locker.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	var (
		jobs      []model.JobPosting
		preFailed []dto.ItemOutcome
	)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		job, err := uc.jobs.GetJob(ctx, id)
		if err == nil {
			err = uc.jobs.ClearEmbedding(ctx, id)
		}
		if err != nil {
			preFailed = append(preFailed, failedOutcome(id, err))
			continue
		}
		jobs = append(jobs, *job)
	}

	return uc.process(ctx, jobs, preFailed), nil
}

// Invalidate clears the stored vectors without embedding anything, so the
// next generation pass selects the jobs again. Used when a change arrives
// while another run holds the lock.
func (uc *EmbeddingUsecase) Invalidate(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := uc.jobs.ClearEmbedding(ctx, id); err != nil && !apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			return err
		}
	}
	return nil
}

// Submit starts GenerateMissing in the background and returns the run record
// to poll. The lock is taken before returning so a concurrent run is
// rejected immediately.
func (uc *EmbeddingUsecase) Submit(ctx context.Context, trigger string) (*model.EmbeddingRun, error) {
	unlock, err := uc.locker.TryLock(ctx)
	if err != nil {
		return nil, err
	}

	run := &model.EmbeddingRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Status:    model.RunStatusProcessing,
		Failures:  "[]",
		StartedAt: uc.now(),
	}
	if err := uc.runs.CreateRun(ctx, run); err != nil {
		unlock()
		return nil, apperrors.Internal("failed to create embedding run", err)
	}

	// the background run owns its own copy; the caller's record is never
	// written after Submit returns
	bg := *run
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		defer unlock()
		uc.executeRun(uc.baseCtx, &bg)
	}()

	return run, nil
}

func (uc *EmbeddingUsecase) executeRun(ctx context.Context, run *model.EmbeddingRun) {
	ctx, span := uc.tracer.Start(ctx, "EmbeddingUsecase.executeRun")
	defer span.End()

	summary, err := uc.generateMissing(ctx)
	finished := uc.now()
	run.FinishedAt = &finished
	if err != nil {
		span.RecordError(err)
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = model.RunStatusCompleted
		run.Succeeded = summary.Succeeded
		run.Failed = summary.Failed
		run.Skipped = summary.Skipped
		failures, err := json.Marshal(summary.Failures)
		if err == nil {
			run.Failures = string(failures)
		}
	}

	// the run context may already be cancelled by shutdown; still record it
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := uc.runs.UpdateRun(saveCtx, run); err != nil {
		uc.logger.Error("failed to save embedding run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func (uc *EmbeddingUsecase) GetRun(ctx context.Context, id uuid.UUID) (*dto.EmbeddingRunDTO, error) {
	run, err := uc.runs.FindRunByID(ctx, id)
	if err != nil {
		return nil, err
	}

	failures := []dto.ItemOutcome{}
	if run.Failures != "" {
		if err := json.Unmarshal([]byte(run.Failures), &failures); err != nil {
			return nil, apperrors.Internal("failed to decode run failures", err)
		}
	}
	return &dto.EmbeddingRunDTO{
		ID:         run.ID,
		Trigger:    run.Trigger,
		Status:     run.Status,
		Succeeded:  run.Succeeded,
		Failed:     run.Failed,
		Skipped:    run.Skipped,
		Failures:   failures,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}, nil
}

// Close cancels background runs and waits for them to record their outcome.
func (uc *EmbeddingUsecase) Close() {
	uc.cancel()
	uc.wg.Wait()
}

// process embeds jobs in selection order, batch by batch. A failing item
// never stops the others; items not reached before ctx is done are counted
// as skipped and stay un-embedded for the next run.
func (uc *EmbeddingUsecase) process(ctx context.Context, jobs []model.JobPosting, preFailed []dto.ItemOutcome) *dto.BatchSummary {
	summary := &dto.BatchSummary{
		Selected:  len(jobs) + len(preFailed),
		Failures:  []dto.ItemOutcome{},
		StartedAt: uc.now(),
	}

	outcomes := make([]dto.ItemOutcome, len(jobs))
	for i, job := range jobs {
		outcomes[i] = dto.ItemOutcome{JobID: job.ID, Status: dto.ItemPending}
	}

	batchSize := max(uc.cfg.BatchSize, 1)
	for start := 0; start < len(jobs); start += batchSize {
		if start > 0 && !uc.pause(ctx) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		end := min(start+batchSize, len(jobs))
		uc.logger.Debug("processing embedding batch", zap.Int("from", start), zap.Int("to", end))

		var g errgroup.Group
		g.SetLimit(max(uc.cfg.Concurrency, 1))
		for i := start; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = uc.embedJob(ctx, jobs[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	summary.Failures = append(summary.Failures, preFailed...)
	summary.Failed = len(preFailed)
	for _, o := range outcomes {
		switch o.Status {
		case dto.ItemSucceeded:
			summary.Succeeded++
		case dto.ItemFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, o)
		default:
			summary.Skipped++
		}
	}
	summary.FinishedAt = uc.now()

	uc.logger.Info("embedding generation finished",
		zap.Int("selected", summary.Selected),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
	return summary
}

func (uc *EmbeddingUsecase) pause(ctx context.Context) bool {
	if uc.cfg.BatchDelay <= 0 {
		return true
	}
	select {
	case <-time.After(uc.cfg.BatchDelay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (uc *EmbeddingUsecase) embedJob(ctx context.Context, job model.JobPosting) dto.ItemOutcome {
	ctx, span := uc.tracer.Start(ctx, "EmbeddingUsecase.embedJob")
	span.SetAttributes(telemetry.String("job_id", job.ID.String()))
	defer span.End()

	pending := dto.ItemOutcome{JobID: job.ID, Status: dto.ItemPending}
	if ctx.Err() != nil {
		return pending
	}

	text := embedding.BuildInput(job.Title, job.Description)
	if text == "" {
		return uc.fail(job.ID, apperrors.EmptyInput("job has no title or description", nil))
	}
	text, truncated := embedding.Truncate(text, uc.cfg.MaxInputChars)
	if truncated {
		uc.logger.Debug("truncated embedding input",
			zap.String("job_id", job.ID.String()),
			zap.Int("max_chars", uc.cfg.MaxInputChars))
	}

	vec, err := embedWithRetry(ctx, uc.provider, text, uc.retry, uc.logger)
	if err != nil {
		if ctx.Err() != nil {
			return pending
		}
		span.RecordError(err)
		return uc.fail(job.ID, err)
	}

	if err := embedding.Validate(vec); err != nil {
		span.RecordError(err)
		return uc.fail(job.ID, err)
	}

	if err := uc.jobs.UpdateEmbedding(ctx, job.ID, vec, uc.now()); err != nil {
		if ctx.Err() != nil {
			return pending
		}
		span.RecordError(err)
		return uc.fail(job.ID, err)
	}

	return dto.ItemOutcome{JobID: job.ID, Status: dto.ItemSucceeded}
}

func (uc *EmbeddingUsecase) fail(id uuid.UUID, err error) dto.ItemOutcome {
	outcome := failedOutcome(id, err)
	uc.logger.Warn("failed to embed job",
		zap.String("job_id", id.String()),
		zap.String("reason", outcome.Reason),
		zap.Error(err))
	return outcome
}

func failedOutcome(id uuid.UUID, err error) dto.ItemOutcome {
	return dto.ItemOutcome{
		JobID:  id,
		Status: dto.ItemFailed,
		Reason: failureReason(err),
		Detail: err.Error(),
		Err:    err,
	}
}

func failureReason(err error) string {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrTypeEmptyInput:
		return dto.ReasonEmptyInput
	case apperrors.ErrTypeNotFound:
		return dto.ReasonNotFound
	case apperrors.ErrTypeInvalidEmbedding:
		return dto.ReasonInvalidEmbedding
	case apperrors.ErrTypeProvider:
		return dto.ReasonProvider
	}
	return dto.ReasonPersist
}
