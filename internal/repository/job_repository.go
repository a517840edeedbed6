package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/model"
)

// DistanceMetric names a pgvector distance operator. Only cosine is used for
// recommendations; the others exist so a caller has to pick one explicitly.
type DistanceMetric string

const (
	DistanceCosine    DistanceMetric = "cosine"
	DistanceEuclidean DistanceMetric = "euclidean"
)

func (m DistanceMetric) operator() (string, error) {
	switch m {
	case DistanceCosine, "":
		return "<=>", nil
	case DistanceEuclidean:
		return "<->", nil
	}
	return "", apperrors.InvalidRequest("unknown distance metric "+string(m), nil)
}

// SimilarityFilter narrows a similarity search. MinScore <= 0 disables the
// cfo_score filter so unscored postings are included.
type SimilarityFilter struct {
	MinScore  int
	ExcludeID *uuid.UUID
	Metric    DistanceMetric
}

type SimilarJobs struct {
	Items []model.ScoredJob
	Total int64
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// FindJobsMissingEmbedding returns active jobs without a vector, ordered by id.
func (r *JobRepository) FindJobsMissingEmbedding(ctx context.Context) ([]model.JobPosting, error) {
	var jobs []model.JobPosting
	err := missingEmbeddingQuery(r.db.WithContext(ctx)).Find(&jobs).Error
	return jobs, err
}

func missingEmbeddingQuery(tx *gorm.DB) *gorm.DB {
	return tx.
		Model(&model.JobPosting{}).
		Select("id", "title", "description", "cfo_score", "created_at", "updated_at").
		Where("embedding IS NULL").
		Order("id ASC")
}

func (r *JobRepository) GetJob(ctx context.Context, id uuid.UUID) (*model.JobPosting, error) {
	var j model.JobPosting
	err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("job not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateEmbedding stores the vector and its creation time in one statement.
// Soft-deleted jobs are not touched and report NOT_FOUND.
func (r *JobRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, vec []float32, createdAt time.Time) error {
	embedding := pgvector.NewVector(vec)
	res := r.db.WithContext(ctx).
		Model(&model.JobPosting{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"embedding":            embedding,
			"embedding_created_at": createdAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("job not found", nil)
	}
	return nil
}

// ClearEmbedding drops the stored vector so the job is selected again.
func (r *JobRepository) ClearEmbedding(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.JobPosting{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"embedding":            gorm.Expr("NULL"),
			"embedding_created_at": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("job not found", nil)
	}
	return nil
}

// SearchSimilar ranks active, embedded jobs by distance to vec, nearest
// first; ties go to the more recent embedding and then to the lower id.
// Total counts every matching row regardless of limit and offset.
func (r *JobRepository) SearchSimilar(ctx context.Context, vec []float32, filter SimilarityFilter, limit, offset int) (*SimilarJobs, error) {
	op, err := filter.Metric.operator()
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.JobPosting{}).
		Scopes(similarityScope(filter)).
		Count(&total).Error; err != nil {
		return nil, err
	}

	result := &SimilarJobs{Items: []model.ScoredJob{}, Total: total}
	if total == 0 || int64(offset) >= total {
		return result, nil
	}

	if err := similarityQuery(r.db.WithContext(ctx), op, pgvector.NewVector(vec), filter, limit, offset).
		Find(&result.Items).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func similarityQuery(tx *gorm.DB, op string, vec pgvector.Vector, filter SimilarityFilter, limit, offset int) *gorm.DB {
	return tx.
		Model(&model.JobPosting{}).
		Select("jobs.*, embedding "+op+" ? AS distance", vec).
		Scopes(similarityScope(filter)).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "distance", Raw: true}},
			{Column: clause.Column{Name: "embedding_created_at"}, Desc: true},
			{Column: clause.Column{Name: "id"}},
		}}).
		Limit(limit).
		Offset(offset)
}

func similarityScope(filter SimilarityFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("embedding IS NOT NULL")
		if filter.MinScore > 0 {
			tx = tx.Where("cfo_score >= ?", filter.MinScore)
		}
		if filter.ExcludeID != nil {
			tx = tx.Where("id <> ?", *filter.ExcludeID)
		}
		return tx
	}
}
