// Package generation produces the assistant answer from an assembled
// prompt via the OpenAI chat completions API.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/puls-events/events-rag/internal/conversation"
	"github.com/puls-events/events-rag/internal/prompt"
)

// DefaultModel is the chat model used for answer generation.
const DefaultModel = openai.ChatModelGPT4o

// Generator turns prompts into completions. It shares the OpenAI client
// with the embedding layer.
type Generator struct {
	client *openai.Client
	model  openai.ChatModel
}

// NewGenerator creates a Generator. An empty model selects DefaultModel.
func NewGenerator(client *openai.Client, model openai.ChatModel) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Generate sends the prompt and returns the assistant's answer text,
// capped at maxTokens. Rate limit errors are retried with exponential
// backoff, other API errors fail immediately.
func (g *Generator) Generate(ctx context.Context, p prompt.Prompt, maxTokens int) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(p.Turns)+2)
	messages = append(messages, openai.SystemMessage(p.System))
	for _, turn := range p.Turns {
		switch turn.Role {
		case conversation.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(p.Question))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    g.model,
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	var answer string
	operation := func() error {
		resp, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("chat completion returned no choices"))
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return answer, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
