package vecstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemoryStore is an in-memory cosine similarity index with optional JSON
// snapshot persistence. It is the default backend so ingestion and queries
// work without any external service running.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	byID    map[string]int

	snapshotPath string
}

// NewMemoryStore returns an empty store. If snapshotPath is non-empty the
// store persists to it after every mutation and LoadSnapshot can restore it.
func NewMemoryStore(snapshotPath string) *MemoryStore {
	return &MemoryStore{
		byID:         make(map[string]int),
		snapshotPath: snapshotPath,
	}
}

// LoadSnapshot restores records from the snapshot file. A missing file is
// not an error; the store just starts empty.
func (s *MemoryStore) LoadSnapshot() error {
	if s.snapshotPath == "" {
		return nil
	}

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing snapshot %s: %w", s.snapshotPath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.byID = make(map[string]int, len(records))
	for i, r := range records {
		s.byID[r.ID] = i
	}
	return nil
}

// Upsert inserts new records and replaces existing ones in place, preserving
// the original insertion order for replaced IDs.
func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	for _, r := range records {
		if i, ok := s.byID[r.ID]; ok {
			s.records[i] = r
			continue
		}
		s.byID[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	s.mu.Unlock()

	return s.saveSnapshot()
}

// Query scans all records, scoring by cosine similarity.
func (s *MemoryStore) Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}

	s.mu.RLock()
	matches := make([]Match, 0, len(s.records))
	for _, r := range s.records {
		if !filter.Matches(r.Metadata) {
			continue
		}
		if len(r.Values) != len(vector) {
			continue
		}
		matches = append(matches, Match{
			ID:       r.ID,
			Score:    cosineSimilarity(vector, r.Values),
			Metadata: r.Metadata,
		})
	}
	s.mu.RUnlock()

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Stats reports the record count and an approximate in-memory size.
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var size int64
	for _, r := range s.records {
		size += int64(len(r.Values))*4 + int64(len(r.Metadata.Text))
	}
	return &Stats{VectorCount: len(s.records), TotalSize: size}, nil
}

// Clear removes every record and deletes the snapshot file if one exists.
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = nil
	s.byID = make(map[string]int)
	s.mu.Unlock()

	if s.snapshotPath == "" {
		return nil
	}
	if err := os.Remove(s.snapshotPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

func (s *MemoryStore) saveSnapshot() error {
	if s.snapshotPath == "" {
		return nil
	}

	s.mu.RLock()
	data, err := json.Marshal(s.records)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.snapshotPath), 0755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}

	tmp := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
