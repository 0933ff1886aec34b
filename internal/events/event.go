// Package events holds the OpenAgenda event model, the corpus file
// format and the text normalization used before chunking and indexing.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Event is one cultural event as stored in the corpus file. Field names
// follow the OpenAgenda export so fetched and hand-written corpora share
// the same layout.
type Event struct {
	UID             string `json:"uid"`
	Title           string `json:"title_fr"`
	Description     string `json:"description_fr"`
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address"`
	FirstDate       string `json:"firstdate_begin"`
	Keywords        string `json:"keywords_fr,omitempty"`
}

// Corpus is the on-disk envelope around a list of events.
type Corpus struct {
	TotalCount int     `json:"total_count"`
	Results    []Event `json:"results"`
}

// LoadEvents reads a corpus file and returns its events.
func LoadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var corpus Corpus
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	return corpus.Results, nil
}

// SaveEvents writes events to a corpus file, creating parent directories
// as needed.
func SaveEvents(path string, evts []Event) error {
	corpus := Corpus{
		TotalCount: len(evts),
		Results:    evts,
	}

	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create corpus directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus %s: %w", path, err)
	}

	return nil
}

// FormatEvent renders an event as the labeled document indexed when
// chunking is disabled, and as the human-readable source text.
func FormatEvent(e Event) string {
	keywords := e.Keywords
	if keywords == "" {
		keywords = "Aucun"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Titre: %s\n", e.Title)
	fmt.Fprintf(&b, "Description: %s\n", Normalize(e.Description))
	fmt.Fprintf(&b, "Lieu: %s, %s\n", e.LocationName, e.LocationAddress)
	fmt.Fprintf(&b, "Date: %s\n", e.FirstDate)
	fmt.Fprintf(&b, "Mots-clés: %s", keywords)
	return b.String()
}
