package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/job-matcher/internal/dto"
)

func TestWriteSummary(t *testing.T) {
	jobID := uuid.New()
	summary := &dto.BatchSummary{Selected: 5, Succeeded: 4, Failed: 1, Failures: []dto.ItemOutcome{
		{JobID: jobID, Status: dto.ItemFailed, Reason: dto.ReasonProvider, Detail: "PROVIDER: gemini: quota exceeded"},
	}}

	var out bytes.Buffer
	require.NoError(t, writeSummary(&out, summary))
	assert.Contains(t, out.String(), "Succeeded: 4")
	assert.Contains(t, out.String(), jobID.String())
	assert.Contains(t, out.String(), "provider")
}

func TestWriteRecommendations_JSON(t *testing.T) {
	outputFormat = "json"
	t.Cleanup(func() { outputFormat = "auto" })

	result := &dto.RecommendationResult{
		Items:      []dto.RecommendedJob{{ID: uuid.New(), Title: "SRE", Similarity: 0.8}},
		Page:       1,
		PageSize:   5,
		Total:      1,
		TotalPages: 1,
	}

	var out bytes.Buffer
	require.NoError(t, writeRecommendations(&out, result))

	var got dto.RecommendationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, result.Items[0].ID, got.Items[0].ID)
	assert.Equal(t, int64(1), got.TotalPages)
}

func TestWriteRecommendations_Table(t *testing.T) {
	score := 2
	result := &dto.RecommendationResult{
		Items:      []dto.RecommendedJob{{ID: uuid.New(), Title: "Data Engineer", CfoScore: &score, Similarity: 0.91234}},
		Page:       1,
		TotalPages: 1,
		Total:      1,
	}

	var out bytes.Buffer
	require.NoError(t, writeRecommendations(&out, result))
	assert.Contains(t, out.String(), "0.912")
	assert.Contains(t, out.String(), "Data Engineer")
	assert.Contains(t, out.String(), "Page 1 of 1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héé", truncate("hééllo", 3))
}
