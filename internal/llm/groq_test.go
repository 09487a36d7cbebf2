package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func okResponse(content string) string {
	return `{"choices":[{"message":{"content":` + mustQuote(content) + `},"finish_reason":"stop"}]}`
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestGroqClientComplete(t *testing.T) {
	var got chatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		w.Write([]byte(okResponse("  Azadirachta indica  ")))
	})

	c := NewGroqClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "llama-3.1-8b-instant"})
	out, err := c.Complete(context.Background(), Request{
		System:      "You are a botanist.",
		Prompt:      "Botanical name of neem?",
		MaxTokens:   64,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Azadirachta indica", out, "output should be trimmed")

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "llama-3.1-8b-instant", got.Model)
	assert.Nil(t, got.ResponseFormat)
}

func TestGroqClientJSONMode(t *testing.T) {
	var got chatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		w.Write([]byte(okResponse(`{"answer":"ok"}`)))
	})

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), Request{Prompt: "reply in json", JSONMode: true})
	require.NoError(t, err)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestGroqClientModelOverride(t *testing.T) {
	var got chatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		w.Write([]byte(okResponse("plan")))
	})

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL, Model: "llama-3.1-8b-instant"})
	_, err := c.Complete(context.Background(), Request{Prompt: "plan this", Model: "llama-3.3-70b-versatile"})
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
}

func TestGroqClientMissingAPIKey(t *testing.T) {
	c := NewGroqClient(Config{})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestGroqClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestGroqClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewGroqClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestNewFactory(t *testing.T) {
	for _, provider := range []string{"groq", "openai-compatible", ""} {
		c, err := New(Config{Provider: provider, APIKey: "k"})
		require.NoError(t, err, provider)
		require.NotNil(t, c)
	}
	_, err := New(Config{Provider: "anthropic"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}
