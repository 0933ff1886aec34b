// Package rag wires retrieval, prompting, generation and conversation
// history into one question-answering engine.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/puls-events/events-rag/internal/conversation"
	"github.com/puls-events/events-rag/internal/index"
	"github.com/puls-events/events-rag/internal/prompt"
	"github.com/puls-events/events-rag/internal/retrieval"
)

const (
	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 3

	// DefaultMaxTokens caps the generated answer length.
	DefaultMaxTokens = 1024
)

// ErrEmptyQuestion is returned when Ask receives an empty question.
var ErrEmptyQuestion = errors.New("question is empty")

// Generator produces an answer for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt, maxTokens int) (string, error)
}

// Config assembles an Engine.
type Config struct {
	Index     *index.Index
	Embedder  retrieval.QueryEmbedder
	Generator Generator

	// TopK defaults to DefaultTopK, MaxTokens to DefaultMaxTokens.
	TopK      int
	MaxTokens int
}

// Result is one answered question with the chunks it was grounded on.
type Result struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Sources  []retrieval.Result `json:"sources"`
}

// Engine answers questions about the indexed events. It owns one
// conversation history; like the history itself it is not safe for
// concurrent use.
type Engine struct {
	retriever *retrieval.Retriever
	builder   *prompt.Builder
	generator Generator
	history   *conversation.History
	topK      int
	maxTokens int
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Index == nil {
		return nil, fmt.Errorf("rag: index is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("rag: embedder is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("rag: generator is required")
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Engine{
		retriever: retrieval.NewRetriever(cfg.Index, cfg.Embedder),
		builder:   prompt.NewBuilder(),
		generator: cfg.Generator,
		history:   conversation.NewHistory(),
		topK:      topK,
		maxTokens: maxTokens,
	}, nil
}

// Ask answers one question: retrieve the closest chunks, build the
// prompt (with history when useHistory is set), generate, then record
// the exchange. History is only recorded when useHistory is set and the
// whole pipeline succeeded, so a failed question never alters state.
func (e *Engine) Ask(ctx context.Context, question string, useHistory bool) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	results, err := e.retriever.Retrieve(ctx, question, e.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	var turns []conversation.Turn
	if useHistory {
		turns = e.history.Turns()
	}

	p := e.builder.Build(question, results, turns)

	answer, err := e.generator.Generate(ctx, p, e.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if useHistory {
		e.history.Append(question, answer)
	}

	return &Result{
		Question: question,
		Answer:   answer,
		Sources:  results,
	}, nil
}

// History returns a copy of the recorded conversation turns.
func (e *Engine) History() []conversation.Turn {
	return e.history.Turns()
}

// ClearHistory discards the conversation history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}
