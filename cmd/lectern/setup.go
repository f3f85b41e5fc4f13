package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lectern-ai/lectern/internal/chunk"
	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/embed"
	"github.com/lectern-ai/lectern/internal/home"
	"github.com/lectern-ai/lectern/internal/pipeline"
	"github.com/lectern-ai/lectern/internal/qdrant"
	"github.com/lectern-ai/lectern/internal/structure"
	"github.com/lectern-ai/lectern/internal/vecstore"
)

// getHome returns the home directory manager.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// loadConfig loads configuration from the --config flag or default paths.
func loadConfig() (*config.Config, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return mgr.Get(), nil
}

// buildStore constructs the configured vector store backend.
func buildStore(ctx context.Context, cfg *config.Config, h *home.Dir) (vecstore.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		snapshotPath := ""
		if cfg.Store.Snapshot {
			snapshotPath = h.SnapshotPath(cfg.Store.Collection)
		}
		store := vecstore.NewMemoryStore(snapshotPath)
		if err := store.LoadSnapshot(); err != nil {
			return nil, err
		}
		return store, nil
	case "qdrant":
		client, err := qdrant.NewClient(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			Collection: cfg.Store.Collection,
			Dimensions: cfg.Embedding.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (expected memory or qdrant)", cfg.Store.Backend)
	}
}

// buildProvider constructs the configured embedding provider.
func buildProvider(cfg *config.Config) (embed.Provider, error) {
	switch cfg.Embedding.Provider {
	case "", "openai":
		return embed.NewOpenAIProvider(embed.OpenAIConfig{
			APIKey:     cfg.ResolveAPIKey(),
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
		})
	case "mock":
		mock := embed.NewMockProvider()
		if cfg.Embedding.Dimensions > 0 {
			mock.Dims = cfg.Embedding.Dimensions
		}
		return mock, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (expected openai or mock)", cfg.Embedding.Provider)
	}
}

// buildPipeline assembles the full ingestion pipeline from config.
func buildPipeline(ctx context.Context, cfg *config.Config, h *home.Dir, onProgress pipeline.ProgressFunc) (*pipeline.Pipeline, error) {
	store, err := buildStore(ctx, cfg, h)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	generator, err := embed.NewGenerator(embed.GeneratorConfig{
		Provider:          provider,
		BatchSize:         cfg.Embedding.BatchSize,
		MaxConcurrency:    cfg.Embedding.MaxConcurrency,
		MaxRetries:        cfg.Embedding.MaxRetries,
		RetryDelay:        time.Duration(cfg.Embedding.RetryDelayMs) * time.Millisecond,
		BatchDelay:        time.Duration(cfg.Embedding.BatchDelayMs) * time.Millisecond,
		RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
	})
	if err != nil {
		return nil, err
	}

	segmenter := chunk.NewSegmenter(chunk.SegmenterConfig{
		ChunkSize:       cfg.Chunking.ChunkSize,
		ChunkOverlap:    cfg.Chunking.ChunkOverlap,
		MinChunkSize:    cfg.Chunking.MinChunkSize,
		ExtractKeywords: cfg.Chunking.ExtractKeywords,
	})

	detector := structure.NewDetector(structure.DetectorConfig{
		MinConfidence: cfg.Structure.MinConfidence,
	})

	return pipeline.New(pipeline.Config{
		Detector:         detector,
		Segmenter:        segmenter,
		Generator:        generator,
		Store:            store,
		StructureEnabled: cfg.Structure.Enabled,
		OnProgress:       onProgress,
	})
}
