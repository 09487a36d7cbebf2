package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanjeevani/internal/agents"
	"sanjeevani/internal/orchestrator"
	"sanjeevani/internal/store"
)

type cannedAgent struct {
	domain string
	result agents.AgentResult
}

func (a *cannedAgent) ProcessQuery(context.Context, string, int) agents.AgentResult {
	return a.result
}

func (a *cannedAgent) Capabilities() agents.Capabilities {
	return agents.Capabilities{Domain: a.domain, Specialties: []string{a.domain + " lookups"}}
}

type cannedKB struct{ state store.ConnState }

func (kb *cannedKB) State() store.ConnState { return kb.state }

func newTestServer(kbState store.ConnState) *Server {
	research := &cannedAgent{domain: "research", result: agents.AgentResult{
		Agent:      "research",
		Plants:     []agents.PlantRecord{{BotanicalName: "Ocimum sanctum", CommonNames: []string{"Tulsi"}}},
		Summary:    "Found 1 research record(s): Ocimum sanctum.",
		Confidence: 0.2,
	}}
	geography := &cannedAgent{domain: "geography", result: agents.AgentResult{Agent: "geography"}}
	conservation := &cannedAgent{domain: "conservation", result: agents.AgentResult{Agent: "conservation"}}

	// No completion client: planning takes the fast path and synthesis
	// degrades to joined summaries.
	orch := orchestrator.New(orchestrator.Deps{
		Research:     research,
		Geography:    geography,
		Conservation: conservation,
	}, orchestrator.DefaultOptions())

	return NewServer(orch, []agents.Agent{research, geography, conservation}, &cannedKB{state: kbState})
}

func postQuery(t *testing.T, srv *Server, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	srv := newTestServer(store.StateConnected)

	rec := postQuery(t, srv, `{"question": "Tell me about tulsi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orchestrator.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "Ocimum sanctum")
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, []string{"Tell me about tulsi"}, resp.Plan)
}

func TestQueryEndpointKeepsSession(t *testing.T) {
	srv := newTestServer(store.StateConnected)

	first := postQuery(t, srv, `{"question": "Tell me about tulsi"}`)
	var resp orchestrator.Response
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))

	second := postQuery(t, srv, `{"question": "What about its safety?", "session_id": "`+resp.SessionID+`"}`)
	require.Equal(t, http.StatusOK, second.Code)

	var resp2 orchestrator.Response
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp2))
	assert.Equal(t, resp.SessionID, resp2.SessionID)
}

func TestQueryEndpointRejectsBadInput(t *testing.T) {
	srv := newTestServer(store.StateConnected)

	assert.Equal(t, http.StatusBadRequest, postQuery(t, srv, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postQuery(t, srv, `{"limit": 3}`).Code)
}

func TestAgentsEndpoint(t *testing.T) {
	srv := newTestServer(store.StateConnected)

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Agents []agents.Capabilities `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Agents, 3)
	assert.Equal(t, "research", payload.Agents[0].Domain)
}

func TestHealthEndpoint(t *testing.T) {
	for _, tc := range []struct {
		state store.ConnState
		code  int
	}{
		{store.StateConnected, http.StatusOK},
		{store.StateDegraded, http.StatusOK},
		{store.StateClosed, http.StatusServiceUnavailable},
	} {
		srv := newTestServer(tc.state)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, tc.code, rec.Code, tc.state)
	}
}
