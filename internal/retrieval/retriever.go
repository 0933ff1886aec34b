// Package retrieval turns a natural-language query into the ranked
// chunks most relevant to it.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/puls-events/events-rag/internal/chunker"
	"github.com/puls-events/events-rag/internal/index"
)

// ErrEmptyQuery is returned when the query is empty or whitespace.
var ErrEmptyQuery = errors.New("query is empty")

// QueryEmbedder is the slice of the embedding layer Retrieve needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Result is one retrieved chunk with its rank and distance.
type Result struct {
	Rank     int              `json:"rank"`
	Distance float32          `json:"distance"`
	Text     string           `json:"text"`
	Metadata chunker.Metadata `json:"metadata"`
}

// Retriever searches the index with embedded queries.
type Retriever struct {
	index    *index.Index
	embedder QueryEmbedder
}

// NewRetriever creates a Retriever over the given index.
func NewRetriever(ix *index.Index, embedder QueryEmbedder) *Retriever {
	return &Retriever{index: ix, embedder: embedder}
}

// Retrieve embeds the query and returns the k closest chunks, ranked
// from 1 by ascending distance. Fewer than k results are returned when
// the index holds fewer chunks.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		chunk, err := r.index.Chunk(hit.Row)
		if err != nil {
			return nil, fmt.Errorf("resolve hit %d: %w", i, err)
		}
		results[i] = Result{
			Rank:     i + 1,
			Distance: hit.Distance,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		}
	}
	return results, nil
}
