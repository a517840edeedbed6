package dto

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationQuery asks for jobs related either to a stored job or to a
// free-text query; exactly one of SourceJobID and QueryText is set. Zero
// Page and PageSize mean "use the default", a nil MinScore likewise.
type RecommendationQuery struct {
	SourceJobID *uuid.UUID `json:"source_job_id,omitempty"`
	QueryText   string     `json:"query_text,omitempty"`
	MinScore    *int       `json:"min_score,omitempty"`
	Page        int        `json:"page,omitempty"`
	PageSize    int        `json:"page_size,omitempty"`
}

type RecommendedJob struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	CfoScore           *int       `json:"cfo_score"`
	Distance           float64    `json:"distance"`
	Similarity         float64    `json:"similarity"`
	EmbeddingCreatedAt *time.Time `json:"embedding_created_at,omitempty"`
}

type RecommendationResult struct {
	Items      []RecommendedJob `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"total_pages"`
}
