package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/puls-events/events-rag/internal/rag"
	"github.com/puls-events/events-rag/internal/retrieval"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server    *mcp.Server
	retriever *retrieval.Retriever
	engine    *rag.Engine
}

// Config holds server dependencies.
type Config struct {
	Retriever *retrieval.Retriever
	Engine    *rag.Engine
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "paris-events-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_events",
		Description: "Search Paris cultural events semantically. Returns the closest event chunks with titles, venues and dates.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend_events",
		Description: "Ask a natural-language question about Paris cultural events. Returns a generated French answer with the events it was grounded on.",
	}, makeRecommendHandler(cfg.Engine))

	return &Server{
		server:    server,
		retriever: cfg.Retriever,
		engine:    cfg.Engine,
	}
}

// Run starts the server with stdio transport (blocks until the client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance, for transport
// handlers that wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
