// Package mcpserver exposes document retrieval as an MCP tool over
// stdio, so external orchestrators can call it like any other tool.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/akulikov/research-assistant/internal/core/ports"
)

const serverVersion = "0.1.0"

// The description steers orchestrators toward this tool for questions
// about the user's own documents rather than general knowledge.
const searchToolDescription = "Search through your personal documents and notes. Use this when the question is about YOUR information, past notes, saved documents, or personal knowledge. Input should be a search query."

type Server struct {
	searcher ports.DocumentSearcher
	topK     int
	mcp      *server.MCPServer
}

func New(searcher ports.DocumentSearcher, topK int) *Server {
	if topK <= 0 {
		topK = 3
	}

	s := &Server{
		searcher: searcher,
		topK:     topK,
		mcp: server.NewMCPServer(
			"research-assistant",
			serverVersion,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	tool := mcp.NewTool("search_documents",
		mcp.WithDescription(searchToolDescription),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text query to search the document corpus with."),
		),
	)
	s.mcp.AddTool(tool, s.handleSearch)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.searcher.Search(ctx, query, s.topK)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

// ServeStdio blocks serving MCP requests on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
