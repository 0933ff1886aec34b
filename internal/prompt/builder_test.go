package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/puls-events/events-rag/internal/chunker"
	"github.com/puls-events/events-rag/internal/conversation"
	"github.com/puls-events/events-rag/internal/retrieval"
)

func fixedBuilder() *Builder {
	return NewBuilderAt(func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	})
}

func sampleResults() []retrieval.Result {
	return []retrieval.Result{
		{
			Rank: 1,
			Text: "Titre: Jazz Night\nSoirée jazz au club",
			Metadata: chunker.Metadata{
				EventUID:     "jazz",
				Title:        "Jazz Night",
				LocationName: "Le Duc des Lombards",
				FirstDate:    "2026-09-12",
			},
		},
		{
			Rank: 2,
			Text: "Titre: Expo Photo\nRétrospective photographique",
			Metadata: chunker.Metadata{
				EventUID:  "expo",
				Title:     "Expo Photo",
				FirstDate: "2026-10-01",
			},
		},
	}
}

func TestBuild_NumbersContextInRankOrder(t *testing.T) {
	p := fixedBuilder().Build("Quels concerts de jazz ?", sampleResults(), nil)

	if !strings.Contains(p.System, "Événement 1:") {
		t.Error("system message missing first numbered event")
	}
	if !strings.Contains(p.System, "Événement 2:") {
		t.Error("system message missing second numbered event")
	}
	if strings.Index(p.System, "Jazz Night") > strings.Index(p.System, "Expo Photo") {
		t.Error("events not in rank order")
	}
	if !strings.Contains(p.System, "Lieu: Le Duc des Lombards") {
		t.Error("system message missing venue line")
	}
	if p.Question != "Quels concerts de jazz ?" {
		t.Errorf("question = %q", p.Question)
	}
}

func TestBuild_CarriesReferenceDate(t *testing.T) {
	p := fixedBuilder().Build("question", sampleResults(), nil)

	if !strings.Contains(p.System, "2026-08-28") {
		t.Error("system message should carry the reference date")
	}
	if !strings.Contains(p.System, "événements à venir") {
		t.Error("system message should instruct to prefer upcoming events")
	}
}

func TestBuild_EmptyResults(t *testing.T) {
	p := fixedBuilder().Build("question", nil, nil)

	if !strings.Contains(p.System, noContextLine) {
		t.Errorf("system message should state the empty context, got %q", p.System)
	}
	if strings.Contains(p.System, "Événement 1:") {
		t.Error("no events should be numbered for empty results")
	}
}

func TestBuild_PassesHistoryThrough(t *testing.T) {
	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "Bonjour"},
		{Role: conversation.RoleAssistant, Content: "Bonjour, comment puis-je aider ?"},
	}

	p := fixedBuilder().Build("Et ce week-end ?", sampleResults(), history)

	if len(p.Turns) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(p.Turns))
	}
	if p.Turns[0].Content != "Bonjour" {
		t.Errorf("turn 0 = %q", p.Turns[0].Content)
	}
	// The question stays out of the history turns.
	for _, turn := range p.Turns {
		if turn.Content == "Et ce week-end ?" {
			t.Error("question must not appear in history turns")
		}
	}
}
