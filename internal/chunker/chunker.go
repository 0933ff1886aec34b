package chunker

import (
	"github.com/puls-events/events-rag/internal/events"
)

// Metadata ties a chunk back to its source event.
type Metadata struct {
	EventUID     string `json:"event_uid"`
	Title        string `json:"title"`
	LocationName string `json:"location_name"`
	FirstDate    string `json:"first_date"`
	ChunkIndex   int    `json:"chunk_index"`
}

// Chunk is one indexed unit of text with its event metadata.
type Chunk struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Chunker splits events into overlapping chunks.
type Chunker struct {
	splitter *splitter
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.splitter.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.splitter.overlap = overlap
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{splitter: newSplitter(DefaultChunkSize, DefaultOverlap)}
	for _, opt := range opts {
		opt(c)
	}
	if c.splitter.overlap >= c.splitter.chunkSize {
		c.splitter.overlap = c.splitter.chunkSize / 4
	}
	return c
}

// ChunkEvent splits one event into chunks. The chunked document is the
// event title, a blank line, then the normalized description. At least
// one chunk is always produced, and chunk indices form a dense 0-based
// sequence.
func (c *Chunker) ChunkEvent(e events.Event) []Chunk {
	fullText := e.Title + "\n\n" + events.Normalize(e.Description)

	segments := c.splitter.Split(fullText)
	if len(segments) == 0 {
		segments = []string{e.Title}
	}

	chunks := make([]Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = Chunk{
			Text: seg,
			Metadata: Metadata{
				EventUID:     e.UID,
				Title:        e.Title,
				LocationName: e.LocationName,
				FirstDate:    e.FirstDate,
				ChunkIndex:   i,
			},
		}
	}
	return chunks
}

// WholeEvent wraps the fully formatted event document in a single chunk,
// used when chunking is disabled at index-build time.
func WholeEvent(e events.Event) Chunk {
	return Chunk{
		Text: events.FormatEvent(e),
		Metadata: Metadata{
			EventUID:     e.UID,
			Title:        e.Title,
			LocationName: e.LocationName,
			FirstDate:    e.FirstDate,
			ChunkIndex:   0,
		},
	}
}
