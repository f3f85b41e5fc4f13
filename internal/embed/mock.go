package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync/atomic"
	"time"
)

// MockProvider is a Provider for testing.
type MockProvider struct {
	// Configurable behavior
	Dims    int
	Latency time.Duration

	// FailSubstring makes any text containing it fail permanently.
	FailSubstring string
	// FailBatches makes the first N EmbedBatch calls fail outright.
	FailBatches int
	// ShortSubstring makes matching texts return a truncated (invalid) vector.
	ShortSubstring string
	// VectorFor overrides generated values per text (for similarity tests).
	VectorFor map[string][]float32

	// State
	batchCalls atomic.Int64
	textCalls  atomic.Int64
}

// NewMockProvider creates a mock with sensible defaults.
func NewMockProvider() *MockProvider {
	return &MockProvider{Dims: 8}
}

// EmbedBatch generates deterministic pseudo-vectors derived from each text.
func (m *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	call := m.batchCalls.Add(1)
	if m.FailBatches > 0 && call <= int64(m.FailBatches) {
		return nil, fmt.Errorf("mock batch failure %d", call)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		m.textCalls.Add(1)
		if m.FailSubstring != "" && strings.Contains(text, m.FailSubstring) {
			return nil, fmt.Errorf("mock failure for text %d", i)
		}
		vectors[i] = m.vector(text)
	}
	return vectors, nil
}

// BatchCalls returns the number of EmbedBatch invocations.
func (m *MockProvider) BatchCalls() int64 {
	return m.batchCalls.Load()
}

// TextCalls returns the number of individual texts processed.
func (m *MockProvider) TextCalls() int64 {
	return m.textCalls.Load()
}

func (m *MockProvider) vector(text string) []float32 {
	if v, ok := m.VectorFor[text]; ok {
		return v
	}

	dims := m.Dims
	if m.ShortSubstring != "" && strings.Contains(text, m.ShortSubstring) {
		dims = m.Dims / 2
	}

	// Deterministic values seeded from the text hash.
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	values := make([]float32, dims)
	for i := range values {
		seed = seed*1664525 + 1013904223
		values[i] = float32(seed%2000)/1000.0 - 1.0
	}
	return values
}

// Dimensions returns the configured vector width.
func (m *MockProvider) Dimensions() int {
	return m.Dims
}

// ModelName returns the mock model identifier.
func (m *MockProvider) ModelName() string {
	return "mock-embedding"
}
