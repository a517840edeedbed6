package events

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/config"
	"github.com/fadilmartias/job-matcher/internal/dto"
)

// embeddedFields are the job columns the embedding input is built from.
var embeddedFields = []string{"title", "description"}

// JobUpdated is published by the dashboard after a job row changes.
type JobUpdated struct {
	ID            uuid.UUID `json:"id"`
	ChangedFields []string  `json:"changed_fields"`
}

func (e JobUpdated) affectsEmbedding() bool {
	if len(e.ChangedFields) == 0 {
		return true
	}
	for _, f := range e.ChangedFields {
		if slices.Contains(embeddedFields, f) {
			return true
		}
	}
	return false
}

type Reembedder interface {
	Reembed(ctx context.Context, ids []uuid.UUID) (*dto.BatchSummary, error)
	Invalidate(ctx context.Context, ids []uuid.UUID) error
}

type Handler struct {
	logger    *zap.Logger
	nc        *nats.Conn
	tracer    trace.Tracer
	cfg       config.NATSConfig
	embedding Reembedder
	timeout   time.Duration
	sub       *nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, cfg config.NATSConfig, embedding Reembedder) *Handler {
	return &Handler{
		logger:    logger,
		nc:        nc,
		tracer:    tracer,
		cfg:       cfg,
		embedding: embedding,
		timeout:   2 * time.Minute,
	}
}

func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	sub, err := h.nc.QueueSubscribe(h.cfg.Subject, h.cfg.Queue, h.handleJobUpdated)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", h.cfg.Subject, err)
	}

	h.sub = sub
	h.logger.Info("Registered NATS subscriptions", zap.String("subject", h.cfg.Subject))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.sub.Unsubscribe()
		},
	})

	return nil
}

func (h *Handler) handleJobUpdated(msg *nats.Msg) {
	ctx, span := h.tracer.Start(context.Background(), "handleJobUpdated")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var event JobUpdated
	if err := json.Unmarshal(msg.Data, &event); err != nil || event.ID == uuid.Nil {
		h.logger.Warn("Dropping malformed job update",
			zap.String("subject", msg.Subject),
			zap.ByteString("data", msg.Data))
		return
	}
	if !event.affectsEmbedding() {
		return
	}

	ids := []uuid.UUID{event.ID}
	summary, err := h.embedding.Reembed(ctx, ids)
	if apperrors.IsType(err, apperrors.ErrTypeConflict) {
		// a run is in progress; leave the job for the next one
		err = h.embedding.Invalidate(ctx, ids)
		if err == nil {
			h.logger.Info("Queued job for next embedding run", zap.String("job_id", event.ID.String()))
			return
		}
	}
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to re-embed updated job",
			zap.Error(err),
			zap.String("job_id", event.ID.String()))
		return
	}

	if summary.Failed > 0 {
		h.logger.Warn("Re-embedding updated job failed",
			zap.String("job_id", event.ID.String()),
			zap.String("reason", summary.Failures[0].Reason))
		return
	}
	h.logger.Info("Re-embedded updated job", zap.String("job_id", event.ID.String()))
}
