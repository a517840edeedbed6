// Package embedding holds the pure pieces of the embedding pipeline: the
// vector validator and the input text builder.
package embedding

import (
	"fmt"
	"math"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
)

// Dimensions is the embedding size stored in the jobs.embedding column.
const Dimensions = 1536

// Validate checks that vec has exactly Dimensions elements and that every
// element is finite.
func Validate(vec []float32) error {
	if len(vec) != Dimensions {
		return apperrors.InvalidEmbedding(
			fmt.Sprintf("expected %d dimensions, got %d", Dimensions, len(vec)), nil)
	}
	for i, val := range vec {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return apperrors.InvalidEmbedding(
				fmt.Sprintf("invalid embedding value at index %d: %v", i, val), nil)
		}
	}
	return nil
}
