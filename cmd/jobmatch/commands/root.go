package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/app"
	"github.com/fadilmartias/job-matcher/internal/usecase"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobmatch",
		Short: "Embed job postings and find related jobs",
		Long: `jobmatch keeps job posting embeddings up to date and answers
"related jobs" queries against them.

Run "jobmatch embed run" from cron to embed new postings, or
"jobmatch mcp" to let a chat agent search jobs semantically.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "json", "table":
				return nil
			}
			return fmt.Errorf("unknown --format %q (want auto, json or table)", outputFormat)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log dependency wiring and progress")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json or table")

	cmd.AddCommand(NewEmbedCmd())
	cmd.AddCommand(NewRecommendCmd())
	cmd.AddCommand(NewMCPCmd())

	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// usecases are the pieces of the object graph commands work with.
type usecases struct {
	Embedding      *usecase.EmbeddingUsecase
	Recommendation *usecase.RecommendationUsecase
	Logger         *zap.Logger
}

// withUsecases starts the shared object graph, runs fn and stops the graph
// again, closing database and cache connections.
func withUsecases(ctx context.Context, fn func(context.Context, usecases) error) error {
	var uc usecases
	opts := []fx.Option{
		app.Core,
		fx.Populate(&uc.Embedding, &uc.Recommendation, &uc.Logger),
	}
	if verbose {
		opts = append(opts, app.WithZapLogger())
	} else {
		opts = append(opts, fx.NopLogger)
	}

	graph := fx.New(opts...)
	if err := graph.Start(ctx); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer func() {
		_ = graph.Stop(context.WithoutCancel(ctx))
	}()

	return fn(ctx, uc)
}
