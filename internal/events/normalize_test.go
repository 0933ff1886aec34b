package events

import (
	"strings"
	"testing"
)

func TestNormalize_StripsTags(t *testing.T) {
	got := Normalize("<p>Bonjour <strong>le monde</strong></p>")
	want := "Bonjour le monde"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	got := Normalize("Concert  de \t jazz\nau parc")
	want := "Concert de jazz au parc"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_PreservesParagraphBreaks(t *testing.T) {
	got := Normalize("Premier paragraphe.\n\n\nDeuxième   paragraphe.")
	want := "Premier paragraphe.\n\nDeuxième paragraphe."
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_TrimsAndEmpty(t *testing.T) {
	if got := Normalize("   \n\t  "); got != "" {
		t.Errorf("Normalize(whitespace) = %q, want empty", got)
	}
	if got := Normalize(""); got != "" {
		t.Errorf("Normalize(empty) = %q, want empty", got)
	}
	if got := Normalize("  entouré d'espaces  "); got != "entouré d'espaces" {
		t.Errorf("Normalize() = %q, want trimmed", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"<p>Bonjour <strong>le monde</strong></p>",
		"Premier paragraphe.\n\n\nDeuxième paragraphe.",
		"Concert  de \t jazz\nau parc",
		"<div><h1>Titre</h1>\n\n<p>Texte   avec    espaces</p></div>",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalize_MultilineDocument(t *testing.T) {
	raw := `<h2>Exposition</h2>

<p>Une exposition   exceptionnelle
sur deux étages.</p>

<p>Entrée libre.</p>`

	got := Normalize(raw)
	want := "Exposition\n\nUne exposition exceptionnelle sur deux étages.\n\nEntrée libre."
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
	if strings.Contains(got, "<") {
		t.Errorf("Normalize left markup in %q", got)
	}
}
