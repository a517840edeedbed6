package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fadilmartias/job-matcher/internal/model"
	"github.com/fadilmartias/job-matcher/internal/repository"
)

// JobStore is the persistence capability the embedding pipeline and the
// recommendation query need. *repository.JobRepository implements it.
type JobStore interface {
	FindJobsMissingEmbedding(ctx context.Context) ([]model.JobPosting, error)
	GetJob(ctx context.Context, id uuid.UUID) (*model.JobPosting, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, vec []float32, createdAt time.Time) error
	ClearEmbedding(ctx context.Context, id uuid.UUID) error
	SearchSimilar(ctx context.Context, vec []float32, filter repository.SimilarityFilter, limit, offset int) (*repository.SimilarJobs, error)
}

type RunStore interface {
	CreateRun(ctx context.Context, run *model.EmbeddingRun) error
	UpdateRun(ctx context.Context, run *model.EmbeddingRun) error
	FindRunByID(ctx context.Context, id uuid.UUID) (*model.EmbeddingRun, error)
}

var (
	_ JobStore = (*repository.JobRepository)(nil)
	_ RunStore = (*repository.EmbeddingRunRepository)(nil)
)
