// Package qdrant provides a Qdrant-backed vector store and a Docker
// lifecycle manager for running Qdrant locally.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-ai/lectern/internal/vecstore"
)

// pointNamespace seeds deterministic point IDs so re-ingesting the same
// chunk overwrites its point instead of duplicating it.
var pointNamespace = uuid.MustParse("8a4bd2fa-7e11-4f02-9c3d-5b1a6e0d42c7")

// Config holds Qdrant client configuration.
type Config struct {
	URL        string // Base URL, e.g. http://localhost:6333
	Collection string
	Dimensions int
	HTTPClient *http.Client
}

// Client implements vecstore.Store over Qdrant's HTTP API.
type Client struct {
	baseURL    string
	collection string
	dimensions int
	httpClient *http.Client
}

var _ vecstore.Store = (*Client)(nil)

// NewClient creates a Qdrant client. It does not touch the server; call
// EnsureCollection before the first upsert.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant dimensions must be positive, got %d", cfg.Dimensions)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    cfg.URL,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		httpClient: httpClient,
	}, nil
}

type collectionInfo struct {
	Result struct {
		PointsCount int64  `json:"points_count"`
		Status      string `json:"status"`
	} `json:"result"`
	Status string `json:"status"`
}

type createCollectionRequest struct {
	Vectors vectorParams `json:"vectors"`
}

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type point struct {
	ID      string        `json:"id"`
	Vector  []float32     `json:"vector"`
	Payload qdrantPayload `json:"payload"`
}

type qdrantPayload struct {
	ChunkID string `json:"chunk_id"`
	vecstore.Metadata
}

type upsertRequest struct {
	Points []point `json:"points"`
}

type searchRequest struct {
	Vector      []float32     `json:"vector"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
	Filter      *searchFilter `json:"filter,omitempty"`
}

type searchFilter struct {
	Must []fieldMatch `json:"must"`
}

type fieldMatch struct {
	Key   string     `json:"key"`
	Match matchValue `json:"match"`
}

type matchValue struct {
	Value string `json:"value"`
}

type searchResponse struct {
	Result []struct {
		ID      string        `json:"id"`
		Score   float64       `json:"score"`
		Payload qdrantPayload `json:"payload"`
	} `json:"result"`
	Status string `json:"status"`
}

// EnsureCollection creates the collection if it does not exist. An existing
// collection is left untouched.
func (c *Client) EnsureCollection(ctx context.Context) error {
	var info collectionInfo
	err := c.doRequest(ctx, http.MethodGet, c.collectionPath(), nil, &info)
	if err == nil {
		return nil
	}

	req := createCollectionRequest{
		Vectors: vectorParams{Size: c.dimensions, Distance: "Cosine"},
	}
	if err := c.doRequest(ctx, http.MethodPut, c.collectionPath(), req, nil); err != nil {
		return fmt.Errorf("creating collection %s: %w", c.collection, err)
	}
	return nil
}

// Upsert writes records as Qdrant points. Point IDs are derived from chunk
// IDs so the operation is idempotent.
func (c *Client) Upsert(ctx context.Context, records []vecstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]point, 0, len(records))
	for _, r := range records {
		if len(r.Values) != c.dimensions {
			return fmt.Errorf("record %s has %d dimensions, collection expects %d", r.ID, len(r.Values), c.dimensions)
		}
		points = append(points, point{
			ID:     pointID(r.ID),
			Vector: r.Values,
			Payload: qdrantPayload{
				ChunkID:  r.ID,
				Metadata: r.Metadata,
			},
		})
	}

	path := c.collectionPath() + "/points?wait=true"
	if err := c.doRequest(ctx, http.MethodPut, path, upsertRequest{Points: points}, nil); err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

// Query runs a cosine similarity search.
func (c *Client) Query(ctx context.Context, vector []float32, topK int, filter *vecstore.Filter) ([]vecstore.Match, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}
	if len(vector) != c.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, collection expects %d", len(vector), c.dimensions)
	}

	req := searchRequest{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
		Filter:      buildFilter(filter),
	}

	var resp searchResponse
	path := c.collectionPath() + "/points/search"
	if err := c.doRequest(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", c.collection, err)
	}

	matches := make([]vecstore.Match, 0, len(resp.Result))
	for _, hit := range resp.Result {
		id := hit.Payload.ChunkID
		if id == "" {
			id = hit.ID
		}
		matches = append(matches, vecstore.Match{
			ID:       id,
			Score:    hit.Score,
			Metadata: hit.Payload.Metadata,
		})
	}
	return matches, nil
}

// Stats reports the collection's point count. Qdrant does not expose payload
// byte sizes, so TotalSize stays zero.
func (c *Client) Stats(ctx context.Context) (*vecstore.Stats, error) {
	var info collectionInfo
	if err := c.doRequest(ctx, http.MethodGet, c.collectionPath(), nil, &info); err != nil {
		return nil, fmt.Errorf("fetching collection %s: %w", c.collection, err)
	}
	return &vecstore.Stats{VectorCount: int(info.Result.PointsCount)}, nil
}

// Clear drops and recreates the collection.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodDelete, c.collectionPath(), nil, nil); err != nil {
		return fmt.Errorf("deleting collection %s: %w", c.collection, err)
	}
	return c.EnsureCollection(ctx)
}

func (c *Client) collectionPath() string {
	return "/collections/" + c.collection
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant %s %s: %s: %s", method, path, resp.Status, bytes.TrimSpace(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// pointID maps a chunk ID to a stable UUID, which Qdrant requires as the
// point identifier.
func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

func buildFilter(f *vecstore.Filter) *searchFilter {
	if f == nil {
		return nil
	}

	var must []fieldMatch
	if f.Type != "" {
		must = append(must, fieldMatch{Key: "type", Match: matchValue{Value: f.Type}})
	}
	if f.ChapterTitle != "" {
		must = append(must, fieldMatch{Key: "chapter_title", Match: matchValue{Value: f.ChapterTitle}})
	}
	if f.SectionTitle != "" {
		must = append(must, fieldMatch{Key: "section_title", Match: matchValue{Value: f.SectionTitle}})
	}
	if f.Source != "" {
		must = append(must, fieldMatch{Key: "source", Match: matchValue{Value: f.Source}})
	}
	if len(must) == 0 {
		return nil
	}
	return &searchFilter{Must: must}
}
