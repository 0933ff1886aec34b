package events

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []Event {
	return []Event{
		{
			UID:             "evt-1",
			Title:           "Jazz Night",
			Description:     "<p>Soirée jazz avec un quartet  exceptionnel.</p>",
			LocationName:    "Le Duc des Lombards",
			LocationAddress: "42 rue des Lombards, 75001 Paris",
			FirstDate:       "2026-09-12",
			Keywords:        "jazz, concert",
		},
		{
			UID:          "evt-2",
			Title:        "Exposition Photo",
			Description:  "Rétrospective photographique.",
			LocationName: "MEP",
			FirstDate:    "2026-10-01",
		},
	}
}

func TestSaveAndLoadEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.json")

	require.NoError(t, SaveEvents(path, sampleEvents()))

	loaded, err := LoadEvents(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, sampleEvents(), loaded)
}

func TestLoadEvents_MissingFile(t *testing.T) {
	_, err := LoadEvents(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFormatEvent(t *testing.T) {
	got := FormatEvent(sampleEvents()[0])

	want := "Titre: Jazz Night\n" +
		"Description: Soirée jazz avec un quartet exceptionnel.\n" +
		"Lieu: Le Duc des Lombards, 42 rue des Lombards, 75001 Paris\n" +
		"Date: 2026-09-12\n" +
		"Mots-clés: jazz, concert"
	assert.Equal(t, want, got)
}

func TestFormatEvent_NoKeywords(t *testing.T) {
	got := FormatEvent(sampleEvents()[1])
	assert.Contains(t, got, "Mots-clés: Aucun")
}
