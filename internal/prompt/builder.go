// Package prompt assembles the chat prompt sent to the generation
// model: a French system message carrying the retrieved context, the
// prior conversation turns, and the user question.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/puls-events/events-rag/internal/conversation"
	"github.com/puls-events/events-rag/internal/retrieval"
)

const systemHeader = `Tu es un assistant spécialisé dans les événements culturels à Paris.
Tu réponds en français, de manière naturelle et conversationnelle, en t'appuyant uniquement sur les événements fournis dans le contexte ci-dessous.

RÈGLE IMPORTANTE : nous sommes le %s. Privilégie toujours les événements à venir. Si un événement du contexte est déjà passé, signale-le en précisant "Cet événement a déjà eu lieu le [date]".

Si le contexte ne contient pas d'information pertinente pour la question, dis-le simplement sans inventer d'événement.`

const noContextLine = "Aucun événement pertinent n'a été trouvé dans la base."

// Prompt is the structured message sequence handed to the generator.
type Prompt struct {
	System   string
	Turns    []conversation.Turn
	Question string
}

// Builder renders prompts. The clock is injectable so tests can pin the
// reference date used by the recency rule.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder using the wall clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// NewBuilderAt creates a Builder with a fixed clock.
func NewBuilderAt(now func() time.Time) *Builder {
	return &Builder{now: now}
}

// Build assembles the prompt for one question. Retrieved results are
// numbered into the system message in rank order; history becomes the
// intermediate turns; the question is the final user message.
func (b *Builder) Build(question string, results []retrieval.Result, history []conversation.Turn) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, systemHeader, b.now().Format("2006-01-02"))
	sb.WriteString("\n\nContexte :\n")

	if len(results) == 0 {
		sb.WriteString(noContextLine)
	}
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "\nÉvénement %d:\n%s\n", i+1, res.Text)
		if res.Metadata.FirstDate != "" {
			fmt.Fprintf(&sb, "Date: %s\n", res.Metadata.FirstDate)
		}
		if res.Metadata.LocationName != "" {
			fmt.Fprintf(&sb, "Lieu: %s\n", res.Metadata.LocationName)
		}
	}

	return Prompt{
		System:   sb.String(),
		Turns:    history,
		Question: question,
	}
}
