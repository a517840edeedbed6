package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// JobPosting is the slice of the dashboard's jobs table the matcher reads and
// writes. Embedding and EmbeddingCreatedAt are either both set or both nil.
type JobPosting struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title              string           `gorm:"type:text" json:"title"`
	Description        string           `gorm:"type:text" json:"description"`
	Embedding          *pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	EmbeddingCreatedAt *time.Time       `json:"embedding_created_at,omitempty"`
	CfoScore           *int             `gorm:"type:smallint" json:"cfo_score"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (j *JobPosting) TableName() string {
	return "jobs"
}

func (j *JobPosting) HasEmbedding() bool {
	return j.Embedding != nil && len(j.Embedding.Slice()) > 0
}

// ScoredJob is a similarity search row: the job plus its cosine distance to
// the query vector.
type ScoredJob struct {
	JobPosting
	Distance float64 `gorm:"column:distance" json:"distance"`
}
