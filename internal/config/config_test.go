package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("unexpected default model: %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected default dimensions: %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.APIKey != "${OPENAI_API_KEY}" {
		t.Error("expected openai API key placeholder")
	}
	if cfg.Chunking.ChunkSize <= cfg.Chunking.ChunkOverlap {
		t.Error("chunk size should exceed overlap")
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("unexpected default backend: %s", cfg.Store.Backend)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ResolveAPIKey(t *testing.T) {
	os.Setenv("TEST_OPENAI_KEY", "sk-test-123")
	defer os.Unsetenv("TEST_OPENAI_KEY")

	cfg := DefaultConfig()
	cfg.Embedding.APIKey = "${TEST_OPENAI_KEY}"

	if got := cfg.ResolveAPIKey(); got != "sk-test-123" {
		t.Errorf("expected sk-test-123, got %s", got)
	}
}

func TestManager_ReloadNotifiesCallbacks(t *testing.T) {
	cm, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	var got *Config
	cm.OnChange(func(c *Config) { got = c })

	cm.reload()

	if got == nil {
		t.Fatal("expected callback to fire on reload")
	}
	if got.Embedding.Model == "" {
		t.Error("expected reloaded config to carry defaults")
	}
	if cm.Get() != got {
		t.Error("expected Get to return the reloaded config")
	}
}

func TestWriteDefault(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "# Lectern configuration") {
		t.Error("expected header comment")
	}
	if !strings.Contains(content, "text-embedding-3-small") {
		t.Error("expected default model in config")
	}
	if !strings.Contains(content, "${OPENAI_API_KEY}") {
		t.Error("expected API key placeholder in config")
	}
}
