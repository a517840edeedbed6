package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/cache"
	"github.com/fadilmartias/job-matcher/internal/config"
	"github.com/fadilmartias/job-matcher/internal/dto"
	"github.com/fadilmartias/job-matcher/internal/embedding"
	"github.com/fadilmartias/job-matcher/internal/repository"
	"github.com/fadilmartias/job-matcher/internal/response"
	"github.com/fadilmartias/job-matcher/internal/service"
	"github.com/fadilmartias/job-matcher/internal/telemetry"
)

const queryCachePrefix = "job-matcher:query-embedding:"

// maxOffset bounds the row offset sent to the store. Pages past it are
// necessarily empty.
const maxOffset = math.MaxInt32

// RecommendationUsecase answers "jobs related to job X" and "jobs related to
// this text". It never writes job state.
type RecommendationUsecase struct {
	jobs     JobStore
	provider service.EmbeddingProvider
	cache    cache.Cache
	cfg      config.RecommendationConfig
	embedCfg config.EmbeddingConfig
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewRecommendationUsecase wires the query side. queryCache may be nil.
func NewRecommendationUsecase(jobs JobStore, provider service.EmbeddingProvider, queryCache cache.Cache, cfg config.RecommendationConfig, embedCfg config.EmbeddingConfig, logger *zap.Logger) *RecommendationUsecase {
	return &RecommendationUsecase{
		jobs:     jobs,
		provider: provider,
		cache:    queryCache,
		cfg:      cfg,
		embedCfg: embedCfg,
		logger:   logger,
		tracer:   telemetry.GetTracer("job-matcher/usecase/recommendation"),
	}
}

type normalizedQuery struct {
	sourceJobID *uuid.UUID
	queryText   string
	minScore    int
	page        int
	pageSize    int
}

func (uc *RecommendationUsecase) normalize(q dto.RecommendationQuery) (normalizedQuery, error) {
	n := normalizedQuery{
		sourceJobID: q.SourceJobID,
		queryText:   strings.TrimSpace(q.QueryText),
		minScore:    uc.cfg.DefaultMinScore,
		page:        q.Page,
		pageSize:    q.PageSize,
	}

	hasSource := n.sourceJobID != nil
	hasText := n.queryText != ""
	if hasSource == hasText {
		return n, apperrors.InvalidRequest("exactly one of source_job_id or query_text is required", nil)
	}
	if hasSource && *n.sourceJobID == uuid.Nil {
		return n, apperrors.InvalidRequest("source_job_id must not be the nil uuid", nil)
	}

	if q.MinScore != nil {
		if *q.MinScore < 0 || *q.MinScore > 3 {
			return n, apperrors.InvalidRequest("min_score must be between 0 and 3", nil)
		}
		n.minScore = *q.MinScore
	}

	if n.page < 0 {
		return n, apperrors.InvalidRequest("page must be a positive integer", nil)
	}
	if n.pageSize < 0 {
		return n, apperrors.InvalidRequest("page_size must be a positive integer", nil)
	}
	n.page = max(n.page, 1)
	if n.pageSize == 0 {
		n.pageSize = uc.cfg.DefaultPageSize
	}
	n.pageSize = min(max(n.pageSize, 1), uc.cfg.MaxPageSize)
	return n, nil
}

// Recommend ranks active, embedded jobs by cosine distance to the source job
// or to the embedded query text. A source job without a vector is an error,
// not an empty result.
func (uc *RecommendationUsecase) Recommend(ctx context.Context, q dto.RecommendationQuery) (*dto.RecommendationResult, error) {
	ctx, span := uc.tracer.Start(ctx, "RecommendationUsecase.Recommend")
	defer span.End()

	req, err := uc.normalize(q)
	if err != nil {
		return nil, err
	}

	var (
		vec     []float32
		exclude *uuid.UUID
	)
	if req.sourceJobID != nil {
		span.SetAttributes(telemetry.String("source_job_id", req.sourceJobID.String()))
		job, err := uc.jobs.GetJob(ctx, *req.sourceJobID)
		if err != nil {
			return nil, err
		}
		if !job.HasEmbedding() {
			return nil, apperrors.SourceNotEmbedded("source job has no embedding yet", nil)
		}
		vec = job.Embedding.Slice()
		exclude = req.sourceJobID
	} else {
		vec, err = uc.embedQuery(ctx, req.queryText)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	offset := pageOffset(req.page, req.pageSize)
	found, err := uc.jobs.SearchSimilar(ctx, vec, repository.SimilarityFilter{
		MinScore:  req.minScore,
		ExcludeID: exclude,
		Metric:    repository.DistanceCosine,
	}, req.pageSize, offset)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Internal("similarity search failed", err)
	}
	if found == nil || found.Total < 0 || len(found.Items) > req.pageSize ||
		int64(len(found.Items)) > max(found.Total-int64(offset), 0) {
		return nil, apperrors.Internal("similarity search returned inconsistent totals", nil)
	}

	items := make([]dto.RecommendedJob, 0, len(found.Items))
	for _, row := range found.Items {
		items = append(items, dto.RecommendedJob{
			ID:                 row.ID,
			Title:              row.Title,
			Description:        row.Description,
			CfoScore:           row.CfoScore,
			Distance:           row.Distance,
			Similarity:         1 - row.Distance,
			EmbeddingCreatedAt: row.EmbeddingCreatedAt,
		})
	}

	span.SetAttributes(telemetry.Int("results", len(items)))
	return &dto.RecommendationResult{
		Items:      items,
		Page:       req.page,
		PageSize:   req.pageSize,
		Total:      found.Total,
		TotalPages: response.TotalPages(found.Total, req.pageSize),
	}, nil
}

func pageOffset(page, pageSize int) int {
	if page-1 > maxOffset/pageSize {
		return maxOffset
	}
	return (page - 1) * pageSize
}

// embedQuery embeds free text for a one-off search. The vector is cached
// when a cache is configured but never persisted on a job.
func (uc *RecommendationUsecase) embedQuery(ctx context.Context, text string) ([]float32, error) {
	text, _ = embedding.Truncate(normalizeQuery(text), uc.embedCfg.MaxInputChars)
	key := queryCacheKey(text)

	if vec, ok := uc.cachedVector(ctx, key); ok {
		return vec, nil
	}

	vec, err := embedOnce(ctx, uc.provider, text, uc.embedCfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	if err := embedding.Validate(vec); err != nil {
		return nil, err
	}

	uc.storeVector(ctx, key, vec)
	return vec, nil
}

func (uc *RecommendationUsecase) cachedVector(ctx context.Context, key string) ([]float32, bool) {
	if uc.cache == nil {
		return nil, false
	}

	var raw string
	if err := uc.cache.Get(ctx, key, &raw); err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("query embedding cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil || embedding.Validate(vec) != nil {
		uc.logger.Warn("discarding malformed cached query embedding", zap.String("key", key))
		if err := uc.cache.Delete(ctx, key); err != nil {
			uc.logger.Warn("query embedding cache delete failed", zap.Error(err))
		}
		return nil, false
	}
	return vec, true
}

func (uc *RecommendationUsecase) storeVector(ctx context.Context, key string, vec []float32) {
	if uc.cache == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, string(raw), uc.cfg.QueryCacheTTL); err != nil {
		uc.logger.Warn("query embedding cache write failed", zap.Error(err))
	}
}

// normalizeQuery collapses runs of whitespace. Case is kept: providers embed
// "Go" and "go" differently.
func normalizeQuery(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// queryCacheKey expects normalized text, the exact text sent to the provider.
func queryCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return queryCachePrefix + hex.EncodeToString(sum[:])
}
