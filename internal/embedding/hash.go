package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// hashDims is the fixed dimensionality of the hash engine.
const hashDims = 256

// HashEngine is a deterministic, dependency-free embedding engine: a
// hashed bag-of-words projection. Texts sharing vocabulary land close
// together, which is enough for offline development and tests. It is
// never a substitute for a real model in production.
type HashEngine struct{}

// NewHashEngine creates a hash embedding engine.
func NewHashEngine() *HashEngine {
	return &HashEngine{}
}

// Embed projects the text into a fixed-size hashed token space and
// L2-normalizes the result. It never fails.
func (e *HashEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, hashDims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'\"()")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%hashDims]++
	}

	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag > 0 {
		norm := float32(math.Sqrt(mag))
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text in turn.
func (e *HashEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, _ := e.Embed(ctx, t)
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the fixed hash dimensionality.
func (e *HashEngine) Dimensions() int {
	return hashDims
}

// Name returns the engine name.
func (e *HashEngine) Name() string {
	return "hash"
}
