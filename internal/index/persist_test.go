package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puls-events/events-rag/internal/chunker"
)

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ix := buildTestIndex(t)

	require.NoError(t, ix.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ix.Len(), loaded.Len())
	assert.Equal(t, ix.Dimension(), loaded.Dimension())

	// Search behaves identically on the loaded index.
	query := []float32{1, 0, 0}
	want, err := ix.Search(query, 4)
	require.NoError(t, err)
	got, err := loaded.Search(query, 4)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Chunk metadata survives the round trip.
	chunk, err := loaded.Chunk(0)
	require.NoError(t, err)
	assert.Equal(t, "a", chunk.Metadata.EventUID)
	assert.Equal(t, "chunk a", chunk.Text)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_MissingChunksFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ix := buildTestIndex(t)
	require.NoError(t, ix.Save(dir))

	require.NoError(t, os.Remove(filepath.Join(dir, ChunksFile)))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_MissingVectorsFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ix := buildTestIndex(t)
	require.NoError(t, ix.Save(dir))

	require.NoError(t, os.Remove(filepath.Join(dir, VectorsFile)))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestLoad_CorruptVectorsFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")
	ix := buildTestIndex(t)
	require.NoError(t, ix.Save(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, VectorsFile), []byte("garbage"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSave_OverwritesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")

	first := buildTestIndex(t)
	require.NoError(t, first.Save(dir))

	second, err := New(3)
	require.NoError(t, err)
	require.NoError(t, second.Append(
		[][]float32{{0.5, 0.5, 0}},
		[]chunker.Chunk{testChunk("solo", "chunk solo")},
	))
	require.NoError(t, second.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}
