// Package eval scores generated answers against a test set with an
// LLM judge.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// TestCase is one evaluation question with its expected answer.
type TestCase struct {
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
}

type testSet struct {
	TestCases []TestCase `json:"test_cases"`
}

// LoadTestSet reads evaluation cases from a JSON file.
func LoadTestSet(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test set %s: %w", path, err)
	}

	var ts testSet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("parse test set %s: %w", path, err)
	}
	if len(ts.TestCases) == 0 {
		return nil, fmt.Errorf("test set %s contains no cases", path)
	}
	return ts.TestCases, nil
}

// Score is the judge's verdict on one answer, both axes on a 0-10
// scale.
type Score struct {
	Faithfulness int    `json:"faithfulness"`
	Relevancy    int    `json:"relevancy"`
	Comment      string `json:"comment"`
}

// Judge grades answers with GPT-4o in JSON mode.
type Judge struct {
	client *openai.Client
}

// NewJudge creates a Judge sharing the given OpenAI client.
func NewJudge(client *openai.Client) *Judge {
	return &Judge{client: client}
}

// Grade scores one answer against the ground truth and the retrieved
// context it was generated from.
func (j *Judge) Grade(ctx context.Context, tc TestCase, answer, retrieved string) (*Score, error) {
	prompt := fmt.Sprintf(`Tu évalues la réponse d'un assistant sur les événements culturels à Paris.

Question: %s

Réponse attendue: %s

Contexte fourni à l'assistant:
%s

Réponse de l'assistant: %s

Note la réponse sur deux axes, chacun de 0 à 10:
- faithfulness: la réponse s'appuie-t-elle uniquement sur le contexte fourni, sans rien inventer ?
- relevancy: la réponse traite-t-elle bien la question posée, en cohérence avec la réponse attendue ?

Réponds en JSON:
{"faithfulness": 0, "relevancy": 0, "comment": "justification courte"}`,
		tc.Question, tc.GroundTruth, retrieved, answer)

	resp, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4o,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var score Score
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &score); err != nil {
		return nil, fmt.Errorf("failed to parse judge response: %w", err)
	}
	return &score, nil
}
