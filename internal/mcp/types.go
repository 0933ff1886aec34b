// Package mcp exposes the events index over the Model Context Protocol.
package mcp

// SearchEventsInput defines the input parameters for the search_events tool.
type SearchEventsInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query for finding relevant Paris cultural events"`
	// MaxResults is the maximum number of event chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=3,description=Maximum number of results to return"`
}

// SearchEventsOutput contains the search results.
type SearchEventsOutput struct {
	// Results is the list of matching event chunks, best first.
	Results []EventResult `json:"results"`
	// Message provides informational context (e.g., "No matching events found").
	Message string `json:"message,omitempty"`
}

// EventResult is a single event chunk match from semantic search.
type EventResult struct {
	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`
	// Distance is the squared L2 distance to the query (lower is closer).
	Distance float32 `json:"distance"`
	// Text is the matching chunk text.
	Text string `json:"text"`
	// EventUID identifies the source event.
	EventUID string `json:"event_uid"`
	// Title is the event title.
	Title string `json:"title"`
	// Location is the venue name.
	Location string `json:"location,omitempty"`
	// Date is the event start date.
	Date string `json:"date,omitempty"`
}

// RecommendEventsInput defines the input parameters for the recommend_events tool.
type RecommendEventsInput struct {
	// Question is the natural-language question about Paris events.
	Question string `json:"question" jsonschema:"required,description=A natural-language question about cultural events in Paris (in French or English)"`
}

// RecommendEventsOutput contains the generated recommendation.
type RecommendEventsOutput struct {
	// Answer is the generated French answer.
	Answer string `json:"answer"`
	// Sources lists the event chunks the answer was grounded on.
	Sources []EventResult `json:"sources"`
}
