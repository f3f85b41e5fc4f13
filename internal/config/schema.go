package config

// Config holds lectern configuration.
// Stored at: ~/.lectern/config.yaml (or ./config.yaml)
type Config struct {
	Embedding EmbeddingCfg `mapstructure:"embedding" yaml:"embedding"`
	Chunking  ChunkingCfg  `mapstructure:"chunking" yaml:"chunking"`
	Structure StructureCfg `mapstructure:"structure" yaml:"structure"`
	Store     StoreCfg     `mapstructure:"store" yaml:"store"`
	Qdrant    QdrantCfg    `mapstructure:"qdrant" yaml:"qdrant"`
}

// EmbeddingCfg configures the embedding provider and generator.
type EmbeddingCfg struct {
	Provider          string `mapstructure:"provider" yaml:"provider"`     // "openai" or "mock"
	Model             string `mapstructure:"model" yaml:"model"`           // Embedding model name
	Dimensions        int    `mapstructure:"dimensions" yaml:"dimensions"` // Expected vector width
	APIKey            string `mapstructure:"api_key" yaml:"api_key"`       // Supports ${ENV_VAR} syntax
	BatchSize         int    `mapstructure:"batch_size" yaml:"batch_size"`
	MaxConcurrency    int    `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	MaxRetries        int    `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelayMs      int    `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
	BatchDelayMs      int    `mapstructure:"batch_delay_ms" yaml:"batch_delay_ms"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// ChunkingCfg configures the content segmenter.
type ChunkingCfg struct {
	ChunkSize       int  `mapstructure:"chunk_size" yaml:"chunk_size"`             // Fallback chunk size (chars)
	ChunkOverlap    int  `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`       // Fallback overlap (chars)
	MinChunkSize    int  `mapstructure:"min_chunk_size" yaml:"min_chunk_size"`     // Chunks shorter than this merge forward
	ExtractKeywords bool `mapstructure:"extract_keywords" yaml:"extract_keywords"` // Attach keyword metadata to chunks
}

// StructureCfg configures chapter/section detection.
type StructureCfg struct {
	Enabled       bool    `mapstructure:"enabled" yaml:"enabled"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"` // Matches below this are discarded
}

// StoreCfg selects and configures the vector store backend.
type StoreCfg struct {
	Backend    string `mapstructure:"backend" yaml:"backend"` // "memory" or "qdrant"
	Collection string `mapstructure:"collection" yaml:"collection"`
	Snapshot   bool   `mapstructure:"snapshot" yaml:"snapshot"` // Persist memory store under ~/.lectern/data
}

// QdrantCfg holds Qdrant connection and container configuration.
type QdrantCfg struct {
	URL string `mapstructure:"url" yaml:"url"`
	// ContainerName is the Docker container name (default: lectern-qdrant)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to use (default: qdrant/qdrant:latest)
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 6333)
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingCfg{
			Provider:          "openai",
			Model:             "text-embedding-3-small",
			Dimensions:        1536,
			APIKey:            "${OPENAI_API_KEY}",
			BatchSize:         100,
			MaxConcurrency:    5,
			MaxRetries:        3,
			RetryDelayMs:      1000,
			BatchDelayMs:      200,
			RequestsPerMinute: 300,
		},
		Chunking: ChunkingCfg{
			ChunkSize:       1000,
			ChunkOverlap:    200,
			MinChunkSize:    100,
			ExtractKeywords: true,
		},
		Structure: StructureCfg{
			Enabled:       true,
			MinConfidence: 0.7,
		},
		Store: StoreCfg{
			Backend:    "memory",
			Collection: "lectern",
			Snapshot:   true,
		},
		Qdrant: QdrantCfg{
			URL:           "http://localhost:6333",
			ContainerName: "lectern-qdrant",
			Image:         "qdrant/qdrant:latest",
			Port:          "6333",
		},
	}
}
