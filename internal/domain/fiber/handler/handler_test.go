package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/dto"
	"github.com/fadilmartias/job-matcher/internal/model"
)

type stubRecommender struct {
	got    dto.RecommendationQuery
	result *dto.RecommendationResult
	err    error
}

func (s *stubRecommender) Recommend(_ context.Context, q dto.RecommendationQuery) (*dto.RecommendationResult, error) {
	s.got = q
	return s.result, s.err
}

type stubRunner struct {
	summary  *dto.BatchSummary
	run      *model.EmbeddingRun
	runDTO   *dto.EmbeddingRunDTO
	err      error
	reembeds []uuid.UUID
	trigger  string
}

func (s *stubRunner) GenerateMissing(context.Context) (*dto.BatchSummary, error) {
	return s.summary, s.err
}

func (s *stubRunner) Reembed(_ context.Context, ids []uuid.UUID) (*dto.BatchSummary, error) {
	s.reembeds = append(s.reembeds, ids...)
	return s.summary, s.err
}

func (s *stubRunner) Submit(_ context.Context, trigger string) (*model.EmbeddingRun, error) {
	s.trigger = trigger
	return s.run, s.err
}

func (s *stubRunner) GetRun(context.Context, uuid.UUID) (*dto.EmbeddingRunDTO, error) {
	return s.runDTO, s.err
}

type envelope struct {
	Success    bool            `json:"success"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Details    map[string]any  `json:"details"`
	Pagination *struct {
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int64 `json:"total_pages"`
		TotalItems int64 `json:"total_items"`
	} `json:"pagination"`
}

func newTestApp(rec Recommender, runner EmbeddingRunner) *fiber.App {
	app := fiber.New()
	NewRecommendHandler(rec).RegisterRoutes(app)
	NewEmbeddingHandler(runner).RegisterRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestRelated(t *testing.T) {
	sourceID := uuid.New()
	itemID := uuid.New()
	rec := &stubRecommender{result: &dto.RecommendationResult{
		Items:      []dto.RecommendedJob{{ID: itemID, Title: "Platform Engineer", Similarity: 0.9, Distance: 0.1}},
		Page:       2,
		PageSize:   1,
		Total:      3,
		TotalPages: 3,
	}}
	app := newTestApp(rec, &stubRunner{})

	status, env := do(t, app, http.MethodGet, "/jobs/"+sourceID.String()+"/related?page=2&page_size=1&min_score=0", "")
	require.Equal(t, http.StatusOK, status)

	require.NotNil(t, rec.got.SourceJobID)
	assert.Equal(t, sourceID, *rec.got.SourceJobID)
	require.NotNil(t, rec.got.MinScore)
	assert.Equal(t, 0, *rec.got.MinScore)
	assert.Equal(t, 2, rec.got.Page)
	assert.Equal(t, 1, rec.got.PageSize)

	var items []dto.RecommendedJob
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, itemID, items[0].ID)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(3), env.Pagination.TotalItems)
	assert.Equal(t, int64(3), env.Pagination.TotalPages)
}

func TestRelated_DefaultsLeftToUsecase(t *testing.T) {
	rec := &stubRecommender{result: &dto.RecommendationResult{Items: []dto.RecommendedJob{}, Page: 1, PageSize: 5}}
	app := newTestApp(rec, &stubRunner{})

	status, _ := do(t, app, http.MethodGet, "/jobs/"+uuid.NewString()+"/related", "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, rec.got.MinScore)
	assert.Zero(t, rec.got.Page)
	assert.Zero(t, rec.got.PageSize)
}

func TestRelated_BadInput(t *testing.T) {
	app := newTestApp(&stubRecommender{}, &stubRunner{})

	status, env := do(t, app, http.MethodGet, "/jobs/not-a-uuid/related", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", env.Code)

	status, env = do(t, app, http.MethodGet, "/jobs/"+uuid.NewString()+"/related?page=two", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Details, "page")
}

func TestRelated_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"source not embedded", apperrors.SourceNotEmbedded("source job has no embedding yet", nil), http.StatusUnprocessableEntity, "SOURCE_NOT_EMBEDDED"},
		{"not found", apperrors.NotFound("job not found", nil), http.StatusNotFound, "NOT_FOUND"},
		{"invalid", apperrors.InvalidRequest("min_score must be between 0 and 3", nil), http.StatusBadRequest, "INVALID_REQUEST"},
		{"provider", apperrors.Provider("gemini: embed failed", nil, true), http.StatusInternalServerError, "PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubRecommender{err: tt.err}, &stubRunner{})

			status, env := do(t, app, http.MethodGet, "/jobs/"+uuid.NewString()+"/related", "")
			assert.Equal(t, tt.status, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestRecommend_Body(t *testing.T) {
	rec := &stubRecommender{result: &dto.RecommendationResult{Items: []dto.RecommendedJob{}, Page: 1, PageSize: 5}}
	app := newTestApp(rec, &stubRunner{})

	status, env := do(t, app, http.MethodPost, "/recommendations", `{"query_text":"remote golang backend","min_score":2,"page_size":10}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	assert.Nil(t, rec.got.SourceJobID)
	assert.Equal(t, "remote golang backend", rec.got.QueryText)
	require.NotNil(t, rec.got.MinScore)
	assert.Equal(t, 2, *rec.got.MinScore)
	assert.Equal(t, 10, rec.got.PageSize)
}

func TestRecommend_BadBody(t *testing.T) {
	app := newTestApp(&stubRecommender{}, &stubRunner{})

	status, env := do(t, app, http.MethodPost, "/recommendations", `{"source_job_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Details, "source_job_id")

	status, _ = do(t, app, http.MethodPost, "/recommendations", `{"page":"first"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGenerate(t *testing.T) {
	runner := &stubRunner{summary: &dto.BatchSummary{Selected: 5, Succeeded: 4, Failed: 1, Failures: []dto.ItemOutcome{
		{JobID: uuid.New(), Status: dto.ItemFailed, Reason: dto.ReasonProvider},
	}}}
	app := newTestApp(&stubRecommender{}, runner)

	status, env := do(t, app, http.MethodPost, "/embeddings/generate", "")
	require.Equal(t, http.StatusOK, status)

	var summary dto.BatchSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, dto.ReasonProvider, summary.Failures[0].Reason)
}

func TestGenerate_Conflict(t *testing.T) {
	app := newTestApp(&stubRecommender{}, &stubRunner{err: apperrors.Conflict("embedding generation in progress", nil)})

	status, env := do(t, app, http.MethodPost, "/embeddings/generate", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Code)
}

func TestSubmitAndPollRun(t *testing.T) {
	runID := uuid.New()
	runner := &stubRunner{
		run:    &model.EmbeddingRun{ID: runID, Status: model.RunStatusProcessing},
		runDTO: &dto.EmbeddingRunDTO{ID: runID, Status: model.RunStatusCompleted, Succeeded: 2},
	}
	app := newTestApp(&stubRecommender{}, runner)

	status, env := do(t, app, http.MethodPost, "/embeddings/runs", "")
	require.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "manual", runner.trigger)
	assert.Contains(t, string(env.Data), runID.String())

	status, env = do(t, app, http.MethodGet, "/embeddings/runs/"+runID.String(), "")
	require.Equal(t, http.StatusOK, status)
	var run dto.EmbeddingRunDTO
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Succeeded)
}

func TestReembed(t *testing.T) {
	jobID := uuid.New()
	runner := &stubRunner{summary: &dto.BatchSummary{Selected: 1, Succeeded: 1, Failures: []dto.ItemOutcome{}}}
	app := newTestApp(&stubRecommender{}, runner)

	status, _ := do(t, app, http.MethodPost, "/jobs/"+jobID.String()+"/reembed", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uuid.UUID{jobID}, runner.reembeds)
}

func TestReembed_UnknownJob(t *testing.T) {
	jobID := uuid.New()
	runner := &stubRunner{summary: &dto.BatchSummary{Selected: 1, Failed: 1, Failures: []dto.ItemOutcome{
		{JobID: jobID, Status: dto.ItemFailed, Reason: dto.ReasonNotFound},
	}}}
	app := newTestApp(&stubRecommender{}, runner)

	status, env := do(t, app, http.MethodPost, "/jobs/"+jobID.String()+"/reembed", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}
