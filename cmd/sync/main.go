// Package main provides the events CLI: fetching the corpus, building
// the index and evaluating answer quality.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/puls-events/events-rag/internal/chunker"
	"github.com/puls-events/events-rag/internal/embedding"
	"github.com/puls-events/events-rag/internal/eval"
	"github.com/puls-events/events-rag/internal/events"
	"github.com/puls-events/events-rag/internal/generation"
	"github.com/puls-events/events-rag/internal/index"
	"github.com/puls-events/events-rag/internal/indexer"
	"github.com/puls-events/events-rag/internal/openagenda"
	"github.com/puls-events/events-rag/internal/rag"
)

var (
	eventsFile string
	indexDir   string

	fetchLimit int
	fetchFrom  string

	chunking bool

	testSetFile string
)

var rootCmd = &cobra.Command{
	Use:   "events-sync",
	Short: "Paris cultural events indexing tool",
	Long:  "CLI tool for fetching the OpenAgenda event corpus, building the vector index and evaluating answers",
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch upcoming Paris events from OpenAgenda",
	Long: `Fetches upcoming events located in Paris from the public OpenAgenda
dataset and writes them to the corpus file.`,
	RunE: runFetch,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the corpus file",
	Long: `Chunks and embeds the event corpus and writes the index artifacts.

Environment variables:
  OPENAI_API_KEY OpenAI API key for embeddings (required)`,
	RunE: runIndex,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score generated answers against a test set",
	Long: `Runs each test-set question through the full pipeline and grades the
answers with an LLM judge on faithfulness and relevancy.`,
	RunE: runEvaluate,
}

func init() {
	// Load .env before flag defaults are computed from the environment
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&eventsFile, "events", getEnv("EVENTS_FILE", "data/events.json"), "corpus file path")
	rootCmd.PersistentFlags().StringVar(&indexDir, "index", getEnv("INDEX_DIR", "data/index"), "index directory path")

	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 200, "maximum number of events to fetch")
	fetchCmd.Flags().StringVar(&fetchFrom, "from", time.Now().Format("2006-01-02"), "earliest event start date (YYYY-MM-DD)")

	indexCmd.Flags().BoolVar(&chunking, "chunking", true, "split descriptions into overlapping chunks instead of one document per event")

	evaluateCmd.Flags().StringVar(&testSetFile, "test-set", "data/test_set.json", "test set file path")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(evaluateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Printf("Fetching up to %d Paris events from %s...\n", fetchLimit, fetchFrom)

	client := openagenda.NewClient()
	evts, err := client.FetchParisEvents(ctx, fetchFrom, fetchLimit)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	if err := events.SaveEvents(eventsFile, evts); err != nil {
		return err
	}

	fmt.Printf("Saved %d events to %s\n", len(evts), eventsFile)
	return nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	evts, err := events.LoadEvents(eventsFile)
	if err != nil {
		return err
	}
	if len(evts) == 0 {
		return fmt.Errorf("corpus %s contains no events", eventsFile)
	}
	fmt.Printf("Loaded %d events from %s\n", len(evts), eventsFile)

	client, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(client, 0) // Use default batch size

	pipeline := indexer.NewPipeline(chunker.New(), embedder, slog.Default())
	pipeline.Chunking = chunking

	bar := progressbar.Default(int64(len(evts)), "indexing")
	pipeline.OnEvent = func(done, total int) {
		_ = bar.Set(done)
	}

	ix, stats, err := pipeline.BuildIndex(ctx, evts)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	_ = bar.Finish()

	if err := ix.Save(indexDir); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	fmt.Println()
	fmt.Println("Index build complete!")
	fmt.Printf("  Events: %d\n", stats.TotalEvents)
	fmt.Printf("  Chunks: %d\n", stats.TotalChunks)
	fmt.Printf("  Dimension: %d\n", stats.Dimension)
	fmt.Printf("  Duration: %s\n", stats.Duration.Round(time.Second))
	fmt.Printf("  Saved to: %s\n", indexDir)
	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))

	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cases, err := eval.LoadTestSet(testSetFile)
	if err != nil {
		return err
	}

	ix, err := index.Load(indexDir)
	if err != nil {
		return fmt.Errorf("load index from %s (run the index command first): %w", indexDir, err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}
	embedder := embedding.NewEmbedder(client, 0)

	engine, err := rag.NewEngine(rag.Config{
		Index:     ix,
		Embedder:  embedder,
		Generator: generation.NewGenerator(client.Client(), ""),
	})
	if err != nil {
		return err
	}
	judge := eval.NewJudge(client.Client())

	fmt.Printf("Evaluating %d test cases...\n\n", len(cases))

	var sumFaithfulness, sumRelevancy int
	for i, tc := range cases {
		result, err := engine.Ask(ctx, tc.Question, false)
		if err != nil {
			return fmt.Errorf("case %d (%q): %w", i+1, tc.Question, err)
		}

		retrieved := ""
		for _, src := range result.Sources {
			retrieved += src.Text + "\n\n"
		}

		score, err := judge.Grade(ctx, tc, result.Answer, retrieved)
		if err != nil {
			return fmt.Errorf("grade case %d: %w", i+1, err)
		}

		sumFaithfulness += score.Faithfulness
		sumRelevancy += score.Relevancy

		fmt.Printf("Case %d: %s\n", i+1, tc.Question)
		fmt.Printf("  Faithfulness: %d/10  Relevancy: %d/10\n", score.Faithfulness, score.Relevancy)
		if score.Comment != "" {
			fmt.Printf("  %s\n", score.Comment)
		}
		fmt.Println()
	}

	n := len(cases)
	fmt.Println("Evaluation complete!")
	fmt.Printf("  Average faithfulness: %.1f/10\n", float64(sumFaithfulness)/float64(n))
	fmt.Printf("  Average relevancy: %.1f/10\n", float64(sumRelevancy)/float64(n))

	return nil
}
