// Package main provides the Paris events server: the HTTP question
// API plus the MCP surface over the same index.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/puls-events/events-rag/internal/embedding"
	"github.com/puls-events/events-rag/internal/generation"
	"github.com/puls-events/events-rag/internal/index"
	mcpserver "github.com/puls-events/events-rag/internal/mcp"
	"github.com/puls-events/events-rag/internal/rag"
	"github.com/puls-events/events-rag/internal/retrieval"
	"github.com/puls-events/events-rag/internal/server"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Configuration from environment
	port := getEnv("PORT", "8080")
	indexDir := getEnv("INDEX_DIR", "data/index")
	topK := getEnvInt("RAG_TOP_K", rag.DefaultTopK)
	maxTokens := getEnvInt("RAG_MAX_TOKENS", rag.DefaultMaxTokens)

	// Load the index built by the sync tool
	ix, err := index.Load(indexDir)
	if err != nil {
		log.Fatalf("failed to load index from %s (run the sync tool first): %v", indexDir, err)
	}
	log.Printf("Loaded index: %d chunks, dimension %d", ix.Len(), ix.Dimension())

	// Initialize the OpenAI client shared by embedding and generation
	client, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}
	embedder := embedding.NewEmbedder(client, 0) // Use default batch size
	generator := generation.NewGenerator(client.Client(), "")

	newEngine := func() (*rag.Engine, error) {
		return rag.NewEngine(rag.Config{
			Index:     ix,
			Embedder:  embedder,
			Generator: generator,
			TopK:      topK,
			MaxTokens: maxTokens,
		})
	}

	// One history-free engine serves the MCP tools
	mcpEngine, err := newEngine()
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}
	mcpSrv := mcpserver.NewServer(&mcpserver.Config{
		Retriever: retrieval.NewRetriever(ix, embedder),
		Engine:    mcpEngine,
	})

	// HTTP API with per-session engines
	api := server.New(newEngine, ix.Len(), slog.Default())

	mux := http.NewServeMux()
	api.Routes(mux)
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(mcpSrv, nil))

	// Check if running in server mode (HTTP) or stdio mode (local MCP clients)
	serverMode := getEnv("SERVER_MODE", "true") == "true"

	if serverMode {
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (API at /ask, MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run the MCP server over stdin/stdout, with the
		// HTTP endpoints in the background for local testing
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting HTTP server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()

		log.Println("Starting Paris Events MCP Server (stdio mode)...")
		if err := mcpSrv.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
