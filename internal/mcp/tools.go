// Package mcp exposes related-job lookups to chat agents over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	ServerName    = "job-matcher"
	ServerVersion = "0.1.0"
)

// NewServer builds an MCP server with every tool registered.
func NewServer(recommender Recommender, runs RunReader, logger *zap.Logger) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, ServerVersion)
	RegisterTools(server, recommender, runs, logger)
	return server
}

// RegisterTools registers the job matcher tools with the server
func RegisterTools(server *mcpserver.MCPServer, recommender Recommender, runs RunReader, logger *zap.Logger) *Handlers {
	handlers := &Handlers{
		recommender: recommender,
		runs:        runs,
		logger:      logger,
	}

	server.AddTool(mcp.Tool{
		Name:        "related_jobs",
		Description: "Find job postings semantically related to an existing job or to a free-text description. Pass exactly one of source_job_id or query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"source_job_id": map[string]interface{}{
					"type":        "string",
					"description": "UUID of the job to find related postings for",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free-text description of the role to match against",
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Minimum CFO score (0-3). 0 includes unscored jobs (default: 1)",
				},
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number, starting at 1 (default: 1)",
					"default":     1,
				},
				"page_size": map[string]interface{}{
					"type":        "number",
					"description": "Results per page (default: 5)",
					"default":     5,
				},
			},
		},
	}, handlers.RelatedJobs)

	server.AddTool(mcp.Tool{
		Name:        "embedding_run_status",
		Description: "Get the outcome of an embedding generation run, including failed jobs and their reasons.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "ID returned when the run was started",
				},
			},
			Required: []string{"run_id"},
		},
	}, handlers.EmbeddingRunStatus)

	return handlers
}
