// Package llm wraps the completion provider behind a narrow interface.
// The orchestrator treats every call as fallible: retries and fallbacks
// are the caller's responsibility, never the provider's.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Request is one completion call.
type Request struct {
	// Model overrides the client's default model, letting the
	// orchestrator use a large model for planning and a small fast
	// model for routing.
	Model string

	System string
	Prompt string

	MaxTokens   int
	Temperature float64

	// JSONMode asks the provider to emit a single valid JSON object.
	JSONMode bool
}

// Client is implemented by completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Provider string // groq, openai-compatible
	APIKey   string
	BaseURL  string
	Model    string // default model
	Timeout  time.Duration
}

// New creates a completion client from configuration. Unknown providers
// fail here, at startup, never mid-query.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "groq", "openai-compatible", "":
		return NewGroqClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
