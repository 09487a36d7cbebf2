// Package api exposes the question pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sanjeevani/internal/agents"
	"sanjeevani/internal/logging"
	"sanjeevani/internal/orchestrator"
	"sanjeevani/internal/store"
)

// maxQuestionBytes bounds the request body; questions are sentences,
// not documents.
const maxQuestionBytes = 16 << 10

// Server serves the query API.
type Server struct {
	orch   *orchestrator.Orchestrator
	agents []agents.Agent
	kb     interface{ State() store.ConnState }
	router chi.Router
}

// NewServer wires the routes. kb may be nil when no knowledge base is
// attached (health then reports degraded).
func NewServer(orch *orchestrator.Orchestrator, agentList []agents.Agent, kb interface{ State() store.ConnState }) *Server {
	s := &Server{orch: orch, agents: agentList, kb: kb}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/query", s.handleQuery)
	r.Get("/api/agents", s.handleAgents)
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type queryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	body := http.MaxBytesReader(w, r.Body, maxQuestionBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	start := time.Now()
	resp := s.orch.Query(r.Context(), req.Question, req.SessionID, req.Limit)
	logging.API("query session=%s elapsed=%s", resp.SessionID, time.Since(start).Round(time.Millisecond))

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	caps := make([]agents.Capabilities, 0, len(s.agents))
	for _, a := range s.agents {
		caps = append(caps, a.Capabilities())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"agents": caps})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := store.StateDegraded
	if s.kb != nil {
		state = s.kb.State()
	}
	status := http.StatusOK
	if state == store.StateClosed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": state.String()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.API("response encoding failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.API("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
