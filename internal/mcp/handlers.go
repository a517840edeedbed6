package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/dto"
)

type Recommender interface {
	Recommend(ctx context.Context, q dto.RecommendationQuery) (*dto.RecommendationResult, error)
}

type RunReader interface {
	GetRun(ctx context.Context, id uuid.UUID) (*dto.EmbeddingRunDTO, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	recommender Recommender
	runs        RunReader
	logger      *zap.Logger
}

// RelatedJobs handles the related_jobs tool
func (h *Handlers) RelatedJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := dto.RecommendationQuery{
		QueryText: request.GetString("query", ""),
		Page:      request.GetInt("page", 0),
		PageSize:  request.GetInt("page_size", 0),
	}

	if raw := request.GetString("source_job_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError("source_job_id must be a valid UUID"), nil
		}
		q.SourceJobID = &id
	}
	if _, ok := request.GetArguments()["min_score"]; ok {
		minScore := request.GetInt("min_score", 0)
		q.MinScore = &minScore
	}

	result, err := h.recommender.Recommend(ctx, q)
	if err != nil {
		return h.toolError("related_jobs", err), nil
	}

	return jsonResult(result)
}

// EmbeddingRunStatus handles the embedding_run_status tool
func (h *Handlers) EmbeddingRunStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError("run_id argument is required and must be a string"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("run_id must be a valid UUID"), nil
	}

	run, err := h.runs.GetRun(ctx, id)
	if err != nil {
		return h.toolError("embedding_run_status", err), nil
	}

	return jsonResult(run)
}

// toolError reports err to the agent. Internal details stay in the log.
func (h *Handlers) toolError(tool string, err error) *mcp.CallToolResult {
	errType := apperrors.TypeOf(err)
	if errType == apperrors.ErrTypeInternal || errType == apperrors.ErrTypeProvider {
		h.logger.Error("mcp tool failed", zap.String("tool", tool), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("%s: request failed, try again later", errType))
	}

	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", errType, apperrors.MessageOf(err)))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
