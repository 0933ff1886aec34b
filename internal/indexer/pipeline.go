// Package indexer builds the vector index from an event corpus.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/puls-events/events-rag/internal/chunker"
	"github.com/puls-events/events-rag/internal/embedding"
	"github.com/puls-events/events-rag/internal/events"
	"github.com/puls-events/events-rag/internal/index"
)

// Stats contains statistics about an index build.
type Stats struct {
	TotalEvents int
	TotalChunks int
	Dimension   int
	Duration    time.Duration
}

// Embedder is the embedding surface the pipeline needs.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline orchestrates chunking, embedding and index construction.
type Pipeline struct {
	chunker  *chunker.Chunker
	embedder Embedder
	logger   *slog.Logger

	// Chunking selects between splitting event descriptions into
	// overlapping chunks and indexing one formatted document per event.
	Chunking bool

	// OnEvent, when set, is called after each event is indexed. Used
	// for progress reporting.
	OnEvent func(done, total int)
}

// NewPipeline creates an indexing pipeline.
func NewPipeline(c *chunker.Chunker, embedder Embedder, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		chunker:  c,
		embedder: embedder,
		logger:   logger,
		Chunking: true,
	}
}

// BuildIndex chunks and embeds all events into a fresh index. Events
// that fail to embed abort the build: a partial index would silently
// drop corpus coverage.
func (p *Pipeline) BuildIndex(ctx context.Context, evts []events.Event) (*index.Index, *Stats, error) {
	start := time.Now()

	ix, err := index.New(embedding.EmbeddingDimension)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Info("Starting index build", "events", len(evts), "chunking", p.Chunking)

	totalChunks := 0
	for i, evt := range evts {
		chunks, err := p.processEvent(ctx, ix, evt)
		if err != nil {
			return nil, nil, fmt.Errorf("event %s: %w", evt.UID, err)
		}
		totalChunks += chunks

		if p.OnEvent != nil {
			p.OnEvent(i+1, len(evts))
		}
	}

	stats := &Stats{
		TotalEvents: len(evts),
		TotalChunks: totalChunks,
		Dimension:   ix.Dimension(),
		Duration:    time.Since(start),
	}

	p.logger.Info("Index build complete",
		"events", stats.TotalEvents,
		"chunks", stats.TotalChunks,
		"duration", stats.Duration,
	)

	return ix, stats, nil
}

// processEvent chunks, embeds and appends one event. Returns the number
// of chunks added.
func (p *Pipeline) processEvent(ctx context.Context, ix *index.Index, evt events.Event) (int, error) {
	var chunks []chunker.Chunk
	if p.Chunking {
		chunks = p.chunker.ChunkEvent(evt)
	} else {
		chunks = []chunker.Chunk{chunker.WholeEvent(evt)}
	}
	p.logger.Debug("Chunked event", "uid", evt.UID, "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embeddings: %w", err)
	}

	if err := ix.Append(vectors, chunks); err != nil {
		return 0, fmt.Errorf("append: %w", err)
	}
	return len(chunks), nil
}
