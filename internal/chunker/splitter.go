// Package chunker splits normalized event documents into overlapping,
// bounded-size text segments used as the atomic retrieval unit.
package chunker

import "strings"

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 800

	// DefaultOverlap is the number of trailing characters shared
	// between consecutive chunks.
	DefaultOverlap = 100
)

// splitter recursively splits text on progressively finer separators:
// paragraph breaks first, then sentence ends, then words, and only as a
// last resort at an arbitrary character position. Segments produced by
// a coarse separator are merged back together up to the target size,
// keeping up to overlap characters of trailing text between chunks.
type splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func newSplitter(chunkSize, overlap int) *splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: []string{"\n\n", ". ", " ", ""},
	}
}

// Split breaks text into segments of at most chunkSize characters
// (best-effort: a single unsplittable token may exceed it by a rune).
// At least one segment is returned for non-empty input.
func (s *splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	segments := s.splitRecursive(text, s.separators)

	out := segments[:0]
	for _, seg := range segments {
		if strings.TrimSpace(seg) != "" {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return out
}

func (s *splitter) splitRecursive(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return s.splitWindow(text)
	}

	// SplitAfter keeps the separator attached to the preceding piece,
	// so joining pieces reconstructs the source text.
	pieces := strings.SplitAfter(text, sep)

	var chunks []string
	var pending []string
	for _, piece := range pieces {
		if len(piece) <= s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		chunks = append(chunks, s.splitRecursive(piece, rest)...)
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}
	return chunks
}

// merge accumulates pieces into chunks of at most chunkSize characters.
// When a chunk is emitted, pieces are dropped from the front of the
// window until at most overlap characters remain, so consecutive chunks
// share trailing text.
func (s *splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		if total+len(piece) > s.chunkSize && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total+len(piece) > s.chunkSize && total > 0) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += len(piece)
	}

	if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// splitWindow slices text at arbitrary positions with overlap. It works
// on runes so multi-byte characters are never cut in half.
func (s *splitter) splitWindow(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// pickSeparator returns the first separator present in text and the
// finer-grained separators left to recurse with. The empty separator
// always matches.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}
