package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewEmbedCmd creates the embed command group
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Generate job posting embeddings",
		Long: `Generate job posting embeddings.

Embeddings are stored on the jobs table and used by related-job queries.`,
	}

	cmd.AddCommand(newEmbedRunCmd())
	cmd.AddCommand(newEmbedReembedCmd())

	return cmd
}

func newEmbedRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Embed every job that has no embedding yet",
		Long: `Embed every active job that has no embedding yet.

Safe to run repeatedly: jobs that already have an embedding are skipped, and
a run started while another is in progress exits with a conflict error.

Examples:
  jobmatch embed run
  jobmatch embed run --format json`,
		Args: cobra.NoArgs,
		RunE: runEmbed,
	}
}

func runEmbed(cmd *cobra.Command, args []string) error {
	return withUsecases(cmd.Context(), func(ctx context.Context, uc usecases) error {
		summary, err := uc.Embedding.GenerateMissing(ctx)
		if err != nil {
			return fmt.Errorf("generating embeddings: %w", err)
		}
		return writeSummary(cmd.OutOrStdout(), summary)
	})
}

func newEmbedReembedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reembed <job-id>...",
		Short: "Recompute embeddings for specific jobs",
		Long: `Clear and recompute the embeddings of the given jobs, for example after
their title or description was edited.

Examples:
  jobmatch embed reembed 3f1c2d9e-5b7a-4c1e-9d2f-8a6b4e0c1f27`,
		Args: cobra.MinimumNArgs(1),
		RunE: runReembed,
	}
}

func runReembed(cmd *cobra.Command, args []string) error {
	ids, err := parseJobIDs(args)
	if err != nil {
		return err
	}

	return withUsecases(cmd.Context(), func(ctx context.Context, uc usecases) error {
		summary, err := uc.Embedding.Reembed(ctx, ids)
		if err != nil {
			return fmt.Errorf("re-embedding jobs: %w", err)
		}
		return writeSummary(cmd.OutOrStdout(), summary)
	})
}

func parseJobIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid job id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
