// Package server exposes the question-answering engine over HTTP with
// per-session conversation history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/puls-events/events-rag/internal/rag"
	"github.com/puls-events/events-rag/internal/retrieval"
)

// DefaultRequestTimeout bounds one question end to end, covering both
// the embedding and the generation API calls.
const DefaultRequestTimeout = 60 * time.Second

// EngineFactory creates one engine per session so each session gets its
// own conversation history.
type EngineFactory func() (*rag.Engine, error)

// session pairs an engine with the mutex that serializes access to it.
// The engine and its history are not concurrency-safe on their own.
type session struct {
	mu     sync.Mutex
	engine *rag.Engine
}

// Server is the HTTP API over the events index.
type Server struct {
	newEngine EngineFactory
	indexLen  int
	logger    *slog.Logger
	timeout   time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// New creates a Server. indexLen is reported by the health endpoint.
func New(newEngine EngineFactory, indexLen int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		newEngine: newEngine,
		indexLen:  indexLen,
		logger:    logger,
		timeout:   DefaultRequestTimeout,
		sessions:  make(map[string]*session),
	}
}

// Routes registers the API handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("DELETE /history", s.handleClearHistory)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("/", s.handleLanding)
}

// AskRequest is the body of POST /ask. An empty SessionID starts a new
// session. UseHistory defaults to true; set it to false for one-shot
// questions that should not touch the session history.
type AskRequest struct {
	Question   string `json:"question"`
	SessionID  string `json:"session_id,omitempty"`
	UseHistory *bool  `json:"use_history,omitempty"`
}

// AskResponse is the body of a successful POST /ask.
type AskResponse struct {
	SessionID string             `json:"session_id"`
	Question  string             `json:"question"`
	Answer    string             `json:"answer"`
	Sources   []retrieval.Result `json:"sources"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	sessionID, sess, err := s.getOrCreateSession(req.SessionID)
	if err != nil {
		s.logger.Error("Failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	useHistory := req.UseHistory == nil || *req.UseHistory

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	sess.mu.Lock()
	result, err := sess.engine.Ask(ctx, req.Question, useHistory)
	sess.mu.Unlock()

	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "question must not be empty")
			return
		}
		s.logger.Error("Ask failed", "session", sessionID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		SessionID: sessionID,
		Question:  result.Question,
		Answer:    result.Answer,
		Sources:   result.Sources,
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	sess.mu.Lock()
	sess.engine.ClearHistory()
	sess.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}

// getOrCreateSession returns the session for id, creating a fresh one
// (with a new UUID) when id is empty or unknown.
func (s *Server) getOrCreateSession(id string) (string, *session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if sess, ok := s.sessions[id]; ok {
			return id, sess, nil
		}
	}

	engine, err := s.newEngine()
	if err != nil {
		return "", nil, err
	}

	if id == "" {
		id = uuid.New().String()
	}
	sess := &session{engine: engine}
	s.sessions[id] = sess
	return id, sess, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
