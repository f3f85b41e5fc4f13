// Package vecstore defines the vector store boundary and an in-memory
// implementation used for local indexes and tests.
package vecstore

import (
	"context"
	"fmt"

	"github.com/lectern-ai/lectern/internal/chunk"
	"github.com/lectern-ai/lectern/internal/embed"
)

// Metadata is the closed record type attached to every indexed vector.
// Keeping the fields explicit keeps the store boundary type-safe.
type Metadata struct {
	Text         string   `json:"text"`
	Type         string   `json:"type"`
	ChapterTitle string   `json:"chapter_title,omitempty"`
	SectionTitle string   `json:"section_title,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	ChunkIndex   int      `json:"chunk_index"`
	TotalChunks  int      `json:"total_chunks"`
	Source       string   `json:"source,omitempty"`
}

// Record is one indexed vector plus metadata, keyed by chunk ID.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is one similarity query hit.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Filter narrows a query's candidate set with exact-match semantics.
// Zero-valued fields are unconstrained.
type Filter struct {
	Type         string `json:"type,omitempty"`
	ChapterTitle string `json:"chapter_title,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	Source       string `json:"source,omitempty"`
}

// Matches reports whether the metadata satisfies every set field.
func (f *Filter) Matches(m Metadata) bool {
	if f == nil {
		return true
	}
	if f.Type != "" && f.Type != m.Type {
		return false
	}
	if f.ChapterTitle != "" && f.ChapterTitle != m.ChapterTitle {
		return false
	}
	if f.SectionTitle != "" && f.SectionTitle != m.SectionTitle {
		return false
	}
	if f.Source != "" && f.Source != m.Source {
		return false
	}
	return true
}

// Stats summarizes store contents.
type Stats struct {
	VectorCount int   `json:"vector_count"`
	TotalSize   int64 `json:"total_size_bytes"`
}

// Store is the vector store boundary. Implementations are assumed to
// serialize concurrent upserts safely.
type Store interface {
	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, records []Record) error

	// Query returns the topK most similar records, descending by cosine
	// similarity, ties broken by insertion order. topK must be >= 1.
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error)

	// Stats reports vector count and approximate size.
	Stats(ctx context.Context) (*Stats, error)

	// Clear removes all records. Destructive and explicit; never invoked
	// implicitly by ingestion.
	Clear(ctx context.Context) error
}

// Records pairs chunks with their vectors by chunk ID. A vector whose chunk
// is missing is a caller error; chunks without vectors (embedding failures)
// are skipped.
func Records(chunks []chunk.Chunk, vectors []embed.Vector, source string) ([]Record, error) {
	byID := make(map[string]chunk.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	records := make([]Record, 0, len(vectors))
	for _, v := range vectors {
		c, ok := byID[v.ChunkID]
		if !ok {
			return nil, fmt.Errorf("vector %s has no matching chunk", v.ChunkID)
		}
		records = append(records, Record{
			ID:     c.ID,
			Values: v.Values,
			Metadata: Metadata{
				Text:         c.Text,
				Type:         string(c.Type),
				ChapterTitle: c.ChapterTitle,
				SectionTitle: c.SectionTitle,
				Keywords:     c.Keywords,
				ChunkIndex:   c.ChunkIndex,
				TotalChunks:  c.TotalChunks,
				Source:       source,
			},
		})
	}
	return records, nil
}
