package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/model"
)

type EmbeddingRunRepository struct {
	db *gorm.DB
}

func NewEmbeddingRunRepository(db *gorm.DB) *EmbeddingRunRepository {
	return &EmbeddingRunRepository{db}
}

func (r *EmbeddingRunRepository) CreateRun(ctx context.Context, run *model.EmbeddingRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *EmbeddingRunRepository) UpdateRun(ctx context.Context, run *model.EmbeddingRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *EmbeddingRunRepository) FindRunByID(ctx context.Context, id uuid.UUID) (*model.EmbeddingRun, error) {
	var run model.EmbeddingRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("embedding run not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
