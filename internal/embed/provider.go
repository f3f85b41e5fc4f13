// Package embed converts content chunks into embedding vectors with
// batching, bounded concurrency, and per-item retry.
package embed

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Provider is the embedding provider boundary. The generator is written
// entirely against this shape and is provider-agnostic.
type Provider interface {
	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector width.
	Dimensions() int

	// ModelName returns the embedding model identifier.
	ModelName() string
}

// Vector is a validated embedding for one chunk.
type Vector struct {
	ChunkID       string    `json:"chunk_id"`
	Values        []float32 `json:"values"`
	Model         string    `json:"model"`
	Dimensions    int       `json:"dimensions"`
	GeneratedAtMs int64     `json:"generated_at_ms"`
}

// Failure records a chunk whose embedding could not be generated after
// exhausting retries. Collected, never thrown past the generator.
type Failure struct {
	ChunkID string `json:"chunk_id"`
	Err     error  `json:"-"`
	Message string `json:"error"`
}

// Stats aggregates a generation run so callers can report partial failure
// without inspecting internals.
type Stats struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Batches   int           `json:"batches"`
	Duration  time.Duration `json:"duration"`
}

// Result is the terminal state of an EmbedChunks call. Partial success is
// valid: some vectors plus some failures.
type Result struct {
	Vectors  []Vector  `json:"vectors"`
	Failures []Failure `json:"failures"`
	Stats    Stats     `json:"stats"`
}

// validateVector checks shape and finiteness. Invalid vectors are failures,
// never zero-filled.
func validateVector(values []float32, dimensions int) error {
	if len(values) != dimensions {
		return fmt.Errorf("vector has %d dimensions, expected %d", len(values), dimensions)
	}
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("vector component %d is not finite", i)
		}
	}
	return nil
}
