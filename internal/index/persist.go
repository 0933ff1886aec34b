package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/puls-events/events-rag/internal/chunker"
)

const (
	// VectorsFile holds the raw embedding matrix.
	VectorsFile = "vectors.bin"

	// ChunksFile holds the chunk texts and metadata, row-aligned with
	// VectorsFile.
	ChunksFile = "chunks.json"

	// vectorsMagic identifies the vectors file format.
	vectorsMagic = "EVX1"
)

// Save writes the index to dir as a vectors file and a chunks file,
// creating the directory if needed. An existing index in dir is
// overwritten.
func (ix *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	if err := ix.saveVectors(filepath.Join(dir, VectorsFile)); err != nil {
		return err
	}
	if err := ix.saveChunks(filepath.Join(dir, ChunksFile)); err != nil {
		return err
	}
	return nil
}

// Load reads an index from dir. It returns ErrIndexNotFound when either
// artifact is missing, and an error when the two artifacts disagree on
// row count.
func Load(dir string) (*Index, error) {
	dim, vectors, err := loadVectors(filepath.Join(dir, VectorsFile))
	if err != nil {
		return nil, err
	}

	chunks, err := loadChunks(filepath.Join(dir, ChunksFile))
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: index at %s is incomplete: %d vectors, %d chunks",
			ErrIndexNotFound, dir, len(vectors), len(chunks))
	}

	return &Index{dim: dim, vectors: vectors, chunks: chunks}, nil
}

// saveVectors writes the embedding matrix: a 4-byte magic, the row
// count and dimension as uint32, then row-major little-endian float32s.
func (ix *Index) saveVectors(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vectors file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(vectorsMagic); err != nil {
		return fmt.Errorf("write vectors header: %w", err)
	}
	header := []uint32{uint32(len(ix.vectors)), uint32(ix.dim)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write vectors header: %w", err)
	}
	for _, vec := range ix.vectors {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("write vectors: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush vectors: %w", err)
	}
	return f.Close()
}

func loadVectors(path string) (int, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, fmt.Errorf("%w: %s missing", ErrIndexNotFound, path)
		}
		return 0, nil, fmt.Errorf("open vectors file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, len(vectorsMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return 0, nil, fmt.Errorf("read vectors header: %w", err)
	}
	if string(magic) != vectorsMagic {
		return 0, nil, fmt.Errorf("vectors file %s: bad magic %q", path, magic)
	}

	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, nil, fmt.Errorf("read vectors header: %w", err)
	}
	count, dim := int(header[0]), int(header[1])
	if dim <= 0 {
		return 0, nil, fmt.Errorf("vectors file %s: invalid dimension %d", path, dim)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return 0, nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

func (ix *Index) saveChunks(path string) error {
	data, err := json.Marshal(ix.chunks)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write chunks file: %w", err)
	}
	return nil
}

func loadChunks(path string) ([]chunker.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s missing", ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("read chunks file: %w", err)
	}

	var chunks []chunker.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse chunks file %s: %w", path, err)
	}
	return chunks, nil
}
