package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/puls-events/events-rag/internal/rag"
	"github.com/puls-events/events-rag/internal/retrieval"
)

// makeSearchHandler creates the search_events tool handler. It embeds
// the query and returns the closest event chunks without generating an
// answer.
func makeSearchHandler(retriever *retrieval.Retriever) func(
	context.Context, *mcp.CallToolRequest, SearchEventsInput,
) (*mcp.CallToolResult, SearchEventsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchEventsInput) (
		*mcp.CallToolResult, SearchEventsOutput, error,
	) {
		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = rag.DefaultTopK
		}

		results, err := retriever.Retrieve(ctx, input.Query, maxResults)
		if err != nil {
			if errors.Is(err, retrieval.ErrEmptyQuery) {
				return nil, SearchEventsOutput{}, fmt.Errorf("query must not be empty")
			}
			return nil, SearchEventsOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			return nil, SearchEventsOutput{
				Results: []EventResult{},
				Message: "No matching events found. Try broader search terms.",
			}, nil
		}

		return nil, SearchEventsOutput{Results: toEventResults(results)}, nil
	}
}

// makeRecommendHandler creates the recommend_events tool handler. It
// runs the full question-answering pipeline without touching any
// conversation history: MCP tool calls are independent of each other.
func makeRecommendHandler(engine *rag.Engine) func(
	context.Context, *mcp.CallToolRequest, RecommendEventsInput,
) (*mcp.CallToolResult, RecommendEventsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecommendEventsInput) (
		*mcp.CallToolResult, RecommendEventsOutput, error,
	) {
		result, err := engine.Ask(ctx, input.Question, false)
		if err != nil {
			if errors.Is(err, rag.ErrEmptyQuestion) {
				return nil, RecommendEventsOutput{}, fmt.Errorf("question must not be empty")
			}
			return nil, RecommendEventsOutput{}, fmt.Errorf("recommendation failed: %w", err)
		}

		return nil, RecommendEventsOutput{
			Answer:  result.Answer,
			Sources: toEventResults(result.Sources),
		}, nil
	}
}

func toEventResults(results []retrieval.Result) []EventResult {
	out := make([]EventResult, len(results))
	for i, res := range results {
		out[i] = EventResult{
			Rank:     res.Rank,
			Distance: res.Distance,
			Text:     res.Text,
			EventUID: res.Metadata.EventUID,
			Title:    res.Metadata.Title,
			Location: res.Metadata.LocationName,
			Date:     res.Metadata.FirstDate,
		}
	}
	return out
}
