package embed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/lectern-ai/lectern/internal/chunk"
)

// Defaults for the generation pipeline. All are configurable.
const (
	DefaultBatchSize      = 100
	DefaultMaxConcurrency = 5
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = time.Second
	DefaultBatchDelay     = 200 * time.Millisecond
)

// Generator batches chunks through an embedding provider under a global
// concurrency bound, with per-chunk retry when a whole batch fails.
type Generator struct {
	provider       Provider
	batchSize      int
	maxConcurrency int
	maxRetries     uint
	retryDelay     time.Duration
	batchDelay     time.Duration
	limiter        *RateLimiter
	logger         *slog.Logger
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Provider          Provider
	BatchSize         int
	MaxConcurrency    int
	MaxRetries        int
	RetryDelay        time.Duration
	BatchDelay        time.Duration
	RequestsPerMinute int
	Logger            *slog.Logger
}

// NewGenerator creates a generator for the given provider.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Generator{
		provider:       cfg.Provider,
		batchSize:      cfg.BatchSize,
		maxConcurrency: cfg.MaxConcurrency,
		maxRetries:     uint(cfg.MaxRetries),
		retryDelay:     cfg.RetryDelay,
		batchDelay:     cfg.BatchDelay,
		limiter:        NewRateLimiter(cfg.RequestsPerMinute),
		logger:         cfg.Logger,
	}, nil
}

// EmbedChunks generates vectors for all chunks. Partial success is a valid
// terminal state: failed chunks land in Result.Failures and the call
// returns nil error. The error return is non-nil only when the context is
// cancelled; vectors produced before cancellation are preserved.
func (g *Generator) EmbedChunks(ctx context.Context, chunks []chunk.Chunk) (*Result, error) {
	start := time.Now()

	result := &Result{
		Vectors:  []Vector{},
		Failures: []Failure{},
	}
	if len(chunks) == 0 {
		return result, nil
	}

	// Fan-out/fan-in: each worker owns its batch exclusively and writes only
	// its own slots; no shared state is written concurrently.
	type slot struct {
		values []float32
		err    error
	}
	slots := make([]slot, len(chunks))

	sem := make(chan struct{}, g.maxConcurrency)
	var wg sync.WaitGroup

	batches := 0
	for startIdx := 0; startIdx < len(chunks); startIdx += g.batchSize {
		endIdx := startIdx + g.batchSize
		if endIdx > len(chunks) {
			endIdx = len(chunks)
		}
		batches++

		// Cooperative pacing between successive dispatches.
		if startIdx > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(g.batchDelay):
			}
		}
		if err := g.limiter.Wait(ctx); err != nil {
			// Cancelled: mark all undispatched chunks failed and stop.
			for i := startIdx; i < len(chunks); i++ {
				slots[i].err = err
			}
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() { <-sem }()

			batch := chunks[lo:hi]
			out := g.processBatch(ctx, batch)
			for i, r := range out {
				slots[lo+i] = slot{values: r.values, err: r.err}
			}
		}(startIdx, endIdx)
	}

	wg.Wait()

	now := time.Now().UnixMilli()
	for i, c := range chunks {
		if slots[i].err != nil {
			result.Failures = append(result.Failures, Failure{
				ChunkID: c.ID,
				Err:     slots[i].err,
				Message: slots[i].err.Error(),
			})
			continue
		}
		result.Vectors = append(result.Vectors, Vector{
			ChunkID:       c.ID,
			Values:        slots[i].values,
			Model:         g.provider.ModelName(),
			Dimensions:    g.provider.Dimensions(),
			GeneratedAtMs: now,
		})
	}

	result.Stats = Stats{
		Requested: len(chunks),
		Succeeded: len(result.Vectors),
		Failed:    len(result.Failures),
		Batches:   batches,
		Duration:  time.Since(start),
	}

	g.logger.Info("embedding generation complete",
		"requested", result.Stats.Requested,
		"succeeded", result.Stats.Succeeded,
		"failed", result.Stats.Failed,
		"batches", batches,
		"duration", result.Stats.Duration)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// SetRequestsPerMinute adjusts provider pacing for subsequent dispatches.
// Safe to call while EmbedChunks is running.
func (g *Generator) SetRequestsPerMinute(rpm int) {
	g.limiter.SetRate(rpm)
}

// RequestsPerMinute returns the current pacing setting.
func (g *Generator) RequestsPerMinute() int {
	return g.limiter.Rate()
}

// EmbedQuery generates a single validated vector for a query string.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.embedOne(ctx, text)
}

type batchResult struct {
	values []float32
	err    error
}

// processBatch attempts the whole batch in one provider call, falling back
// to per-chunk retries when the batch call fails or returns bad vectors.
// One bad input never poisons its siblings.
func (g *Generator) processBatch(ctx context.Context, batch []chunk.Chunk) []batchResult {
	out := make([]batchResult, len(batch))

	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := g.provider.EmbedBatch(ctx, texts)
	if err != nil {
		g.logger.Warn("batch embedding failed, retrying per chunk",
			"batch_size", len(batch), "error", err)
		for i := range batch {
			values, itemErr := g.embedOne(ctx, texts[i])
			out[i] = batchResult{values: values, err: itemErr}
		}
		return out
	}

	for i := range batch {
		var values []float32
		if i < len(vectors) {
			values = vectors[i]
		}
		if vErr := validateVector(values, g.provider.Dimensions()); vErr != nil {
			// Invalid vectors are failures, not pass-throughs; give the
			// chunk the same second chance a batch failure would.
			values, vErr = g.embedOne(ctx, texts[i])
			out[i] = batchResult{values: values, err: vErr}
			continue
		}
		out[i] = batchResult{values: values}
	}
	return out
}

// embedOne embeds a single text with exponential backoff
// (delay * 2^attempt) up to the configured max attempts.
func (g *Generator) embedOne(ctx context.Context, text string) ([]float32, error) {
	var values []float32

	err := retry.Do(
		func() error {
			vectors, err := g.provider.EmbedBatch(ctx, []string{text})
			if err != nil {
				return err
			}
			if len(vectors) != 1 {
				return fmt.Errorf("provider returned %d vectors for single input", len(vectors))
			}
			if err := validateVector(vectors[0], g.provider.Dimensions()); err != nil {
				return err
			}
			values = vectors[0]
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.maxRetries),
		retry.Delay(g.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return values, nil
}
