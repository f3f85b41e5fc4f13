// Package pipeline wires extraction, normalization, structure detection,
// chunking, embedding, and indexing into a single document ingestion flow.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-ai/lectern/internal/chunk"
	"github.com/lectern-ai/lectern/internal/embed"
	"github.com/lectern-ai/lectern/internal/extract"
	"github.com/lectern-ai/lectern/internal/normalize"
	"github.com/lectern-ai/lectern/internal/structure"
	"github.com/lectern-ai/lectern/internal/vecstore"
)

// Stage identifies where in the ingestion flow a document currently is.
type Stage string

const (
	StageExtracting         Stage = "extracting"
	StageNormalizing        Stage = "normalizing"
	StageDetectingStructure Stage = "detecting_structure"
	StageChunking           Stage = "chunking"
	StageEmbedding          Stage = "embedding"
	StageIndexing           Stage = "indexing"
	StageComplete           Stage = "complete"
)

// Progress is emitted to the observer as a document moves through stages.
type Progress struct {
	Stage   Stage
	Percent int
	Message string
}

// ProgressFunc observes stage transitions. Called synchronously.
type ProgressFunc func(Progress)

// ExtractFunc produces an extraction for a document path. Defaults to
// extract.Extract; swappable for tests.
type ExtractFunc func(ctx context.Context, path string) (*extract.Extraction, error)

// Config holds the components the pipeline orchestrates.
type Config struct {
	Detector  *structure.Detector
	Segmenter *chunk.Segmenter
	Generator *embed.Generator
	Store     vecstore.Store

	StructureEnabled bool
	Extract          ExtractFunc
	OnProgress       ProgressFunc
	Logger           *slog.Logger
}

// Pipeline runs documents through ingestion and serves queries against the
// resulting index.
type Pipeline struct {
	detector  *structure.Detector
	segmenter *chunk.Segmenter
	generator *embed.Generator
	store     vecstore.Store

	structureEnabled bool
	extract          ExtractFunc
	onProgress       ProgressFunc
	logger           *slog.Logger
}

// New creates a pipeline. Segmenter, Generator, and Store are required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Segmenter == nil {
		return nil, fmt.Errorf("segmenter is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	extractFn := cfg.Extract
	if extractFn == nil {
		extractFn = extract.Extract
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		detector:         cfg.Detector,
		segmenter:        cfg.Segmenter,
		generator:        cfg.Generator,
		store:            cfg.Store,
		structureEnabled: cfg.StructureEnabled && cfg.Detector != nil,
		extract:          extractFn,
		onProgress:       cfg.OnProgress,
		logger:           logger,
	}, nil
}

// Report summarizes one document's ingestion.
type Report struct {
	RunID        string             `json:"run_id" yaml:"run_id"`
	Source       string             `json:"source" yaml:"source"`
	Title        string             `json:"title" yaml:"title"`
	PageCount    int                `json:"page_count" yaml:"page_count"`
	HasMath      bool               `json:"has_math" yaml:"has_math"`
	Outline      *structure.Outline `json:"outline,omitempty" yaml:"outline,omitempty"`
	Chunks       int                `json:"chunks" yaml:"chunks"`
	MarkerChunks int                `json:"marker_chunks" yaml:"marker_chunks"`
	Embedded     int                `json:"embedded" yaml:"embedded"`
	EmbedFailed  int                `json:"embed_failed" yaml:"embed_failed"`
	Indexed      int                `json:"indexed" yaml:"indexed"`
	Duration     time.Duration      `json:"duration" yaml:"duration"`
}

// Ingest runs one document through every stage. Embedding failures for
// individual chunks do not abort the document; stage-level failures do.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*Report, error) {
	start := time.Now()
	name := filepath.Base(path)
	report := &Report{RunID: uuid.NewString(), Source: name}

	p.emit(StageExtracting, 0, fmt.Sprintf("extracting %s", name))
	ext, err := p.extract(ctx, path)
	if err != nil {
		return nil, &StageError{Stage: StageExtracting, Path: path, Err: err}
	}
	report.Title = ext.Info.Title
	report.PageCount = ext.PageCount

	p.emit(StageNormalizing, 15, "normalizing text")
	norm := normalize.Normalize(ext.Text)
	report.HasMath = norm.HasMath

	var outline *structure.Outline
	if p.structureEnabled {
		p.emit(StageDetectingStructure, 30, "detecting structure")
		outline = p.detector.Detect(norm.Text)
		if outline.HasStructure() {
			report.Outline = outline
		} else {
			p.logger.Info("no structure detected, falling back to fixed-size chunking", "source", name)
			outline = nil
		}
	}

	p.emit(StageChunking, 45, "segmenting content")
	chunks := p.segmenter.Segment(norm.Text, outline)
	if len(chunks) == 0 {
		return nil, &StageError{Stage: StageChunking, Path: path, Err: fmt.Errorf("document produced no chunks")}
	}
	report.Chunks = len(chunks)
	for _, c := range chunks {
		if c.IsMarker() {
			report.MarkerChunks++
		}
	}

	p.emit(StageEmbedding, 60, fmt.Sprintf("embedding %d chunks", len(chunks)))
	result, err := p.generator.EmbedChunks(ctx, chunks)
	if err != nil {
		return nil, &StageError{Stage: StageEmbedding, Path: path, Err: err}
	}
	report.Embedded = len(result.Vectors)
	report.EmbedFailed = len(result.Failures)
	if len(result.Vectors) == 0 {
		return nil, &StageError{Stage: StageEmbedding, Path: path, Err: fmt.Errorf("all %d chunks failed to embed", len(chunks))}
	}
	for _, f := range result.Failures {
		p.logger.Warn("chunk failed to embed", "source", name, "chunk", f.ChunkID, "error", f.Message)
	}

	p.emit(StageIndexing, 85, fmt.Sprintf("indexing %d vectors", len(result.Vectors)))
	records, err := vecstore.Records(chunks, result.Vectors, name)
	if err != nil {
		return nil, &StageError{Stage: StageIndexing, Path: path, Err: err}
	}
	if err := p.store.Upsert(ctx, records); err != nil {
		return nil, &StageError{Stage: StageIndexing, Path: path, Err: err}
	}
	report.Indexed = len(records)
	report.Duration = time.Since(start)

	p.emit(StageComplete, 100, fmt.Sprintf("ingested %s", name))
	p.logger.Info("document ingested",
		"source", name,
		"pages", report.PageCount,
		"chunks", report.Chunks,
		"indexed", report.Indexed,
		"embed_failed", report.EmbedFailed,
		"duration", report.Duration.Round(time.Millisecond))

	return report, nil
}

// BatchFailure records one document that failed during a directory ingest.
type BatchFailure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// BatchReport summarizes a directory ingest.
type BatchReport struct {
	Reports  []*Report      `json:"reports" yaml:"reports"`
	Failures []BatchFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// IngestDir ingests every PDF in dir, continuing past per-document failures.
// It errors only when no document could be ingested at all.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*BatchReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", dir)
	}

	batch := &BatchReport{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		report, err := p.Ingest(ctx, path)
		if err != nil {
			p.logger.Error("document failed", "path", path, "error", err)
			batch.Failures = append(batch.Failures, BatchFailure{Path: path, Error: err.Error()})
			continue
		}
		batch.Reports = append(batch.Reports, report)
	}

	if len(batch.Reports) == 0 {
		return batch, fmt.Errorf("all %d documents failed to ingest", len(paths))
	}
	return batch, nil
}

// ApplyRateLimit adjusts embedding request pacing for subsequent batches.
// Used by config hot reload during long-running batch ingests.
func (p *Pipeline) ApplyRateLimit(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		return
	}
	p.generator.SetRequestsPerMinute(requestsPerMinute)
	p.logger.Info("embedding rate limit updated", "requests_per_minute", requestsPerMinute)
}

// Query embeds the query text and searches the index.
func (p *Pipeline) Query(ctx context.Context, text string, topK int, filter *vecstore.Filter) ([]vecstore.Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}

	vector, err := p.generator.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return p.store.Query(ctx, vector, topK, filter)
}

// Stats reports index contents.
func (p *Pipeline) Stats(ctx context.Context) (*vecstore.Stats, error) {
	return p.store.Stats(ctx)
}

// Clear empties the index.
func (p *Pipeline) Clear(ctx context.Context) error {
	return p.store.Clear(ctx)
}

func (p *Pipeline) emit(stage Stage, percent int, message string) {
	if p.onProgress == nil {
		return
	}
	p.onProgress(Progress{Stage: stage, Percent: percent, Message: message})
}
