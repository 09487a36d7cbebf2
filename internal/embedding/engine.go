// Package embedding provides vector embedding generation for semantic
// search over the botanical knowledge base. Supports Google GenAI
// (cloud), Ollama (local), and a deterministic hash engine for offline
// and test environments.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sort"

	"sanjeevani/internal/logging"
)

// Engine generates vector embeddings for text.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embeddings.
	Dimensions() int

	// Name returns the engine name.
	Name() string
}

// Config holds embedding engine configuration.
type Config struct {
	// Provider: "genai", "ollama" or "hash"
	Provider string

	// GenAI configuration
	APIKey string
	Model  string

	// Ollama configuration
	Endpoint string
}

// NewEngine creates an embedding engine based on configuration.
func NewEngine(cfg Config) (Engine, error) {
	logging.Get(logging.CategoryEmbedding).Info("Creating embedding engine: provider=%s", cfg.Provider)

	switch cfg.Provider {
	case "genai":
		return NewGenAIEngine(cfg.APIKey, cfg.Model)
	case "ollama":
		return NewOllamaEngine(cfg.Endpoint, cfg.Model)
	case "hash", "":
		return NewHashEngine(), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'genai', 'ollama' or 'hash')", cfg.Provider)
	}
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, magA, magB float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// SimilarityResult pairs a corpus index with its similarity score.
type SimilarityResult struct {
	Index      int
	Similarity float64
}

// TopK returns the k corpus entries most similar to the query, best
// first. Vectors of mismatched dimension are skipped.
func TopK(query []float32, corpus [][]float32, k int) []SimilarityResult {
	if k <= 0 {
		k = 10
	}

	results := make([]SimilarityResult, 0, len(corpus))
	for i, vec := range corpus {
		sim, err := CosineSimilarity(query, vec)
		if err != nil {
			continue
		}
		results = append(results, SimilarityResult{Index: i, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
