package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	ItemPending   = "pending"
	ItemSucceeded = "succeeded"
	ItemFailed    = "failed"
)

// Failure reasons reported for batch items.
const (
	ReasonEmptyInput       = "emptyInput"
	ReasonNotFound         = "notFound"
	ReasonInvalidEmbedding = "invalidEmbedding"
	ReasonProvider         = "provider"
	ReasonPersist          = "persist"
)

type ItemOutcome struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
	Detail string    `json:"detail,omitempty"`
	Err    error     `json:"-"`
}

type BatchSummary struct {
	Selected   int           `json:"selected"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Failures   []ItemOutcome `json:"failures"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

type EmbeddingRunDTO struct {
	ID         uuid.UUID     `json:"id"`
	Trigger    string        `json:"trigger"`
	Status     string        `json:"status"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Failures   []ItemOutcome `json:"failures"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at"`
}
