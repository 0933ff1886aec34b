// Package embedding maps chunk and query text to fixed-size vectors via
// the OpenAI embeddings API.
package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client shared by the embedding and generation
// layers.
type Client struct {
	client *openai.Client
}

// NewClient creates an OpenAI client. It requires OPENAI_API_KEY to be
// set in the environment and returns an error if it is not.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go reads OPENAI_API_KEY from the environment itself
	client := openai.NewClient()

	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client so the generation layer
// can reuse the same connection and credentials.
func (c *Client) Client() *openai.Client {
	return c.client
}
