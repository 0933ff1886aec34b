// Package index implements the in-memory vector index: exact
// brute-force nearest-neighbor search over squared L2 distance, with a
// two-file persistence format pairing raw vectors with chunk metadata.
package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/puls-events/events-rag/internal/chunker"
)

// DocumentEmbedder is the slice of the embedding layer Build needs.
type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Hit is one search result: the row of the matching chunk and its
// squared L2 distance to the query.
type Hit struct {
	Row      int
	Distance float32
}

// Index stores chunk vectors and their source chunks in parallel
// slices. Row i of the vectors always corresponds to chunks[i].
//
// Index is not safe for concurrent mutation. Concurrent Search calls
// are fine once building is done.
type Index struct {
	dim     int
	vectors [][]float32
	chunks  []chunker.Chunk
}

// New creates an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &Index{dim: dim}, nil
}

// Append adds embedded chunks to the index. Vectors and chunks are
// matched by position. The index is unchanged if validation fails.
func (ix *Index) Append(vectors [][]float32, chunks []chunker.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors, %d chunks", ErrCountMismatch, len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index wants %d", ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}

	ix.vectors = append(ix.vectors, vectors...)
	ix.chunks = append(ix.chunks, chunks...)
	return nil
}

// Build embeds the chunks and appends them. It is a convenience for
// one-shot index construction.
func (ix *Index) Build(ctx context.Context, embedder DocumentEmbedder, chunks []chunker.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	return ix.Append(vectors, chunks)
}

// Search returns the k rows closest to query by squared L2 distance,
// ordered by ascending distance with ties broken by lower row. If k
// exceeds the number of rows, all rows are returned.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index wants %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if len(ix.vectors) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(ix.vectors))
	for row, vec := range ix.vectors {
		hits[row] = Hit{Row: row, Distance: squaredL2(query, vec)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Row < hits[j].Row
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Dimension returns the vector dimension of the index.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Chunk returns the chunk stored at the given row.
func (ix *Index) Chunk(row int) (chunker.Chunk, error) {
	if row < 0 || row >= len(ix.chunks) {
		return chunker.Chunk{}, fmt.Errorf("row %d out of range [0, %d)", row, len(ix.chunks))
	}
	return ix.chunks[row], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
