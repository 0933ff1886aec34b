// Package main provides an interactive terminal chat over the events
// index.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/puls-events/events-rag/internal/embedding"
	"github.com/puls-events/events-rag/internal/generation"
	"github.com/puls-events/events-rag/internal/index"
	"github.com/puls-events/events-rag/internal/rag"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	indexDir := os.Getenv("INDEX_DIR")
	if indexDir == "" {
		indexDir = "data/index"
	}

	ix, err := index.Load(indexDir)
	if err != nil {
		log.Fatalf("failed to load index from %s (run the sync tool first): %v", indexDir, err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}

	engine, err := rag.NewEngine(rag.Config{
		Index:     ix,
		Embedder:  embedding.NewEmbedder(client, 0),
		Generator: generation.NewGenerator(client.Client(), ""),
	})
	if err != nil {
		log.Fatalf("failed to create engine: %v", err)
	}

	fmt.Printf("Assistant événements culturels à Paris (%d chunks indexés)\n", ix.Len())
	fmt.Println("Commandes: 'clear' efface l'historique, 'quit' quitte.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		case "clear":
			engine.ClearHistory()
			fmt.Println("Historique effacé.")
			continue
		}

		result, err := engine.Ask(ctx, line, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "erreur: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(result.Answer)
		fmt.Println()
		for _, src := range result.Sources {
			fmt.Printf("  [%d] %s (%s)\n", src.Rank, src.Metadata.Title, src.Metadata.FirstDate)
		}
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}
