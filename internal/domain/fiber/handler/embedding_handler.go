package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/dto"
	"github.com/fadilmartias/job-matcher/internal/middleware"
	"github.com/fadilmartias/job-matcher/internal/model"
	"github.com/fadilmartias/job-matcher/internal/usecase"
	"github.com/fadilmartias/job-matcher/internal/util"
)

type EmbeddingRunner interface {
	GenerateMissing(ctx context.Context) (*dto.BatchSummary, error)
	Reembed(ctx context.Context, ids []uuid.UUID) (*dto.BatchSummary, error)
	Submit(ctx context.Context, trigger string) (*model.EmbeddingRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*dto.EmbeddingRunDTO, error)
}

type EmbeddingHandler struct {
	uc EmbeddingRunner
}

func NewEmbeddingHandler(uc EmbeddingRunner) *EmbeddingHandler {
	return &EmbeddingHandler{uc: uc}
}

func (h *EmbeddingHandler) RegisterRoutes(app fiber.Router) {
	app.Post("/embeddings/generate", middleware.RateLimiter(1, 10*time.Second), h.Generate)
	app.Post("/embeddings/runs", middleware.RateLimiter(1, 10*time.Second), h.Submit)
	app.Get("/embeddings/runs/:id", h.Run)
	app.Post("/jobs/:id/reembed", h.Reembed)
}

// Generate embeds every job missing a vector and returns the summary once
// the run is over.
func (h *EmbeddingHandler) Generate(c *fiber.Ctx) error {
	summary, err := h.uc.GenerateMissing(c.UserContext())
	if err != nil {
		return util.DomainErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate job embeddings",
		Data:    summary,
	})
}

// Submit starts a generation run in the background.
func (h *EmbeddingHandler) Submit(c *fiber.Ctx) error {
	run, err := h.uc.Submit(c.UserContext(), usecase.TriggerManual)
	if err != nil {
		return util.DomainErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success submit embedding run",
		Data:    fiber.Map{"id": run.ID, "status": run.Status},
	})
}

func (h *EmbeddingHandler) Run(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.DomainErrorResponse(c, util.NewFormError("invalid run id", map[string]string{
			"id": "must be a valid UUID",
		}))
	}

	run, err := h.uc.GetRun(c.UserContext(), id)
	if err != nil {
		return util.DomainErrorResponse(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get embedding run",
		Data:    run,
	})
}

func (h *EmbeddingHandler) Reembed(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.DomainErrorResponse(c, util.NewFormError("invalid job id", map[string]string{
			"id": "must be a valid UUID",
		}))
	}

	summary, err := h.uc.Reembed(c.UserContext(), []uuid.UUID{id})
	if err != nil {
		return util.DomainErrorResponse(c, err)
	}
	if len(summary.Failures) == 1 && summary.Failures[0].Reason == dto.ReasonNotFound {
		return util.DomainErrorResponse(c, apperrors.NotFound("job not found", nil))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success re-embed job",
		Data:    summary,
	})
}
