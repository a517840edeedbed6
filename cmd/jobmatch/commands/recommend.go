package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fadilmartias/job-matcher/internal/dto"
)

var (
	recommendJobID    string
	recommendQuery    string
	recommendPage     int
	recommendPageSize int
	recommendMinScore int
)

// NewRecommendCmd creates the recommend command
func NewRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "List jobs related to a job or a description",
		Long: `List jobs related to an existing job (--job) or to free text (--query),
nearest first.

Examples:
  jobmatch recommend --job 3f1c2d9e-5b7a-4c1e-9d2f-8a6b4e0c1f27
  jobmatch recommend --query "remote golang backend engineer" --min-score 0
  jobmatch recommend --job 3f1c2d9e-5b7a-4c1e-9d2f-8a6b4e0c1f27 --page 2 --format json`,
		Args: cobra.NoArgs,
		RunE: runRecommend,
	}

	cmd.Flags().StringVar(&recommendJobID, "job", "", "Source job ID")
	cmd.Flags().StringVar(&recommendQuery, "query", "", "Free-text description to match")
	cmd.Flags().IntVar(&recommendPage, "page", 1, "Page number")
	cmd.Flags().IntVar(&recommendPageSize, "page-size", 0, "Results per page (0 uses the server default)")
	cmd.Flags().IntVar(&recommendMinScore, "min-score", -1, "Minimum CFO score 0-3 (-1 uses the server default)")
	cmd.MarkFlagsMutuallyExclusive("job", "query")
	cmd.MarkFlagsOneRequired("job", "query")

	return cmd
}

func buildRecommendationQuery() (dto.RecommendationQuery, error) {
	q := dto.RecommendationQuery{
		QueryText: recommendQuery,
		Page:      recommendPage,
		PageSize:  recommendPageSize,
	}
	if recommendJobID != "" {
		id, err := uuid.Parse(recommendJobID)
		if err != nil {
			return q, fmt.Errorf("invalid job id %q: %w", recommendJobID, err)
		}
		q.SourceJobID = &id
	}
	if recommendMinScore >= 0 {
		minScore := recommendMinScore
		q.MinScore = &minScore
	}
	return q, nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	q, err := buildRecommendationQuery()
	if err != nil {
		return err
	}

	return withUsecases(cmd.Context(), func(ctx context.Context, uc usecases) error {
		result, err := uc.Recommendation.Recommend(ctx, q)
		if err != nil {
			return fmt.Errorf("finding related jobs: %w", err)
		}
		return writeRecommendations(cmd.OutOrStdout(), result)
	})
}
