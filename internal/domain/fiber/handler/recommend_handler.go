package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fadilmartias/job-matcher/internal/dto"
	"github.com/fadilmartias/job-matcher/internal/response"
	"github.com/fadilmartias/job-matcher/internal/util"
)

type Recommender interface {
	Recommend(ctx context.Context, q dto.RecommendationQuery) (*dto.RecommendationResult, error)
}

type RecommendHandler struct {
	uc Recommender
}

func NewRecommendHandler(uc Recommender) *RecommendHandler {
	return &RecommendHandler{uc: uc}
}

func (h *RecommendHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/jobs/:id/related", h.Related)
	app.Post("/recommendations", h.Recommend)
}

type recommendRequest struct {
	SourceJobID string `json:"source_job_id"`
	QueryText   string `json:"query_text"`
	MinScore    *int   `json:"min_score"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

// Related lists jobs similar to the job in the path.
func (h *RecommendHandler) Related(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.DomainErrorResponse(c, util.NewFormError("invalid job id", map[string]string{
			"id": "must be a valid UUID",
		}))
	}

	q := dto.RecommendationQuery{SourceJobID: &id}
	fieldErrs := map[string]string{}
	q.Page = queryInt(c, "page", fieldErrs)
	q.PageSize = queryInt(c, "page_size", fieldErrs)
	if c.Query("min_score") != "" {
		minScore := queryInt(c, "min_score", fieldErrs)
		q.MinScore = &minScore
	}
	if len(fieldErrs) > 0 {
		return util.DomainErrorResponse(c, util.NewFormError("invalid query parameters", fieldErrs))
	}

	return h.respond(c, q)
}

// Recommend accepts either a source job id or free text in the body.
func (h *RecommendHandler) Recommend(c *fiber.Ctx) error {
	var req recommendRequest
	if err := c.BodyParser(&req); err != nil {
		return util.DomainErrorResponse(c, util.NewFormError("invalid request body", map[string]string{
			"body": err.Error(),
		}))
	}

	q := dto.RecommendationQuery{
		QueryText: req.QueryText,
		MinScore:  req.MinScore,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.SourceJobID != "" {
		id, err := uuid.Parse(req.SourceJobID)
		if err != nil {
			return util.DomainErrorResponse(c, util.NewFormError("invalid request body", map[string]string{
				"source_job_id": "must be a valid UUID",
			}))
		}
		q.SourceJobID = &id
	}

	return h.respond(c, q)
}

func (h *RecommendHandler) respond(c *fiber.Ctx, q dto.RecommendationQuery) error {
	result, err := h.uc.Recommend(c.UserContext(), q)
	if err != nil {
		return util.DomainErrorResponse(c, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get related jobs",
		Data:       result.Items,
		Pagination: response.NewPagination(result.Page, result.PageSize, result.Total, len(result.Items)),
	})
}

// queryInt reads an optional integer query parameter. Missing means 0.
func queryInt(c *fiber.Ctx, key string, fieldErrs map[string]string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fieldErrs[key] = "must be an integer"
	}
	return v
}
