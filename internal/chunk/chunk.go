// Package chunk segments normalized text into bounded, metadata-tagged
// content units for embedding and retrieval.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Type classifies a chunk for retrieval filtering.
type Type string

const (
	TypeChapterMarker Type = "chapter-marker"
	TypeSectionMarker Type = "section-marker"
	TypeContent       Type = "content"
	TypeDefinition    Type = "definition"
	TypeExample       Type = "example"
	TypeExercise      Type = "exercise"
)

// Chunk is the atomic unit indexed and retrieved.
type Chunk struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Type         Type     `json:"type"`
	ChapterTitle string   `json:"chapter_title,omitempty"`
	SectionTitle string   `json:"section_title,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	ChunkIndex   int      `json:"chunk_index"`
	TotalChunks  int      `json:"total_chunks"`
}

// IsMarker reports whether the chunk is a structural boundary marker rather
// than body content.
func (c *Chunk) IsMarker() bool {
	return c.Type == TypeChapterMarker || c.Type == TypeSectionMarker
}

// chunkID derives a stable ID from content and position. Re-running
// segmentation on identical input yields identical IDs; any change in text
// or position yields a new one.
func chunkID(text string, index int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%s", index, text))
	return hex.EncodeToString(sum[:16])
}
