package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/fadilmartias/job-matcher/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the job matcher as an MCP (Model Context Protocol) server over stdio,
so chat agents can look up related jobs and embedding run status.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the chat client)
  jobmatch mcp

  # Client configuration:
  # {
  #   "mcpServers": {
  #     "jobmatch": {
  #       "command": "jobmatch",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withUsecases(ctx, func(ctx context.Context, uc usecases) error {
		server := mcp.NewServer(uc.Recommendation, uc.Embedding, uc.Logger)

		if !quiet {
			// stdout carries the protocol
			log.Println("job matcher MCP server starting on stdio...")
		}

		serverErr := make(chan error, 1)
		go func() {
			serverErr <- mcpserver.ServeStdio(server)
		}()

		select {
		case <-ctx.Done():
			if !quiet {
				log.Println("Shutdown signal received")
			}
			return nil
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		}
	})
}
