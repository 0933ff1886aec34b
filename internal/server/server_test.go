package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puls-events/events-rag/internal/chunker"
	"github.com/puls-events/events-rag/internal/index"
	"github.com/puls-events/events-rag/internal/prompt"
	"github.com/puls-events/events-rag/internal/rag"
)

type stubEmbedder struct{}

func (stubEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubGenerator struct {
	err error
}

func (g stubGenerator) Generate(ctx context.Context, p prompt.Prompt, maxTokens int) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "Voici ma recommandation.", nil
}

func testIndex(t *testing.T) *index.Index {
	t.Helper()
	ix, err := index.New(3)
	require.NoError(t, err)
	require.NoError(t, ix.Append(
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]chunker.Chunk{
			{Text: "Jazz Night au Duc des Lombards", Metadata: chunker.Metadata{EventUID: "jazz", Title: "Jazz Night"}},
			{Text: "Exposition photo à la MEP", Metadata: chunker.Metadata{EventUID: "expo", Title: "Expo Photo"}},
		},
	))
	return ix
}

func newTestServer(t *testing.T, gen rag.Generator) *httptest.Server {
	t.Helper()
	ix := testIndex(t)

	factory := func() (*rag.Engine, error) {
		return rag.NewEngine(rag.Config{
			Index:     ix,
			Embedder:  stubEmbedder{},
			Generator: gen,
		})
	}

	srv := New(factory, ix.Len(), nil)
	mux := http.NewServeMux()
	srv.Routes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func postAsk(t *testing.T, ts *httptest.Server, body AskRequest) (*http.Response, AskResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out AskResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestAsk(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, out := postAsk(t, ts, AskRequest{Question: "Un concert de jazz ?"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "Voici ma recommandation.", out.Answer)
	require.NotEmpty(t, out.Sources)
	assert.Equal(t, "jazz", out.Sources[0].Metadata.EventUID)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, _ := postAsk(t, ts, AskRequest{Question: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsk_InvalidJSON(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, err := http.Post(ts.URL+"/ask", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsk_SessionReuse(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, first := postAsk(t, ts, AskRequest{Question: "Première question"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, second := postAsk(t, ts, AskRequest{Question: "Deuxième question", SessionID: first.SessionID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestAsk_GeneratorFailure(t *testing.T) {
	ts := newTestServer(t, stubGenerator{err: errors.New("backend down")})

	resp, _ := postAsk(t, ts, AskRequest{Question: "Une question"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestClearHistory(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, out := postAsk(t, ts, AskRequest{Question: "Une question"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/history?session_id="+out.SessionID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
}

func TestClearHistory_UnknownSession(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/history?session_id=inconnue", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClearHistory_MissingSessionID(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/history", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 2, health.IndexedChunks)
	assert.NotEmpty(t, health.Timestamp)
}

func TestHealth_EmptyIndex(t *testing.T) {
	factory := func() (*rag.Engine, error) {
		return nil, errors.New("no index")
	}
	srv := New(factory, 0, nil)
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLanding(t *testing.T) {
	ts := newTestServer(t, stubGenerator{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
