package server

import (
	"net/http"
	"time"
)

// HealthResponse is the JSON body of the health check endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	IndexedChunks int    `json:"indexed_chunks"`
	Timestamp     string `json:"timestamp"`
}

// handleHealth reports whether the server holds a usable index. An
// empty index answers 503: the server is up but cannot answer anything.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		IndexedChunks: s.indexLen,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	if s.indexLen == 0 {
		resp.Status = "unhealthy"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Status = "healthy"
	writeJSON(w, http.StatusOK, resp)
}
