package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// EmbeddingRun records an asynchronously triggered generation pass so an
// admin can poll its outcome.
type EmbeddingRun struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Trigger    string     `gorm:"type:varchar(50)" json:"trigger"` // e.g. "manual", "schedule", "event"
	Status     string     `gorm:"type:varchar(50)" json:"status"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Failures   string     `gorm:"type:jsonb;default:'[]'" json:"failures"`
	Error      string     `gorm:"type:text" json:"error"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r *EmbeddingRun) TableName() string {
	return "embedding_runs"
}
