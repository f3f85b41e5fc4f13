package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("uses provided path", func(t *testing.T) {
		d, err := New("/tmp/lectern-test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Path() != "/tmp/lectern-test" {
			t.Errorf("expected /tmp/lectern-test, got %s", d.Path())
		}
	})

	t.Run("defaults to ~/.lectern", func(t *testing.T) {
		d, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		home, _ := os.UserHomeDir()
		want := filepath.Join(home, DefaultDirName)
		if d.Path() != want {
			t.Errorf("expected %s, got %s", want, d.Path())
		}
	})
}

func TestPaths(t *testing.T) {
	d, err := New("/tmp/lectern-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.DataPath() != "/tmp/lectern-test/data" {
		t.Errorf("unexpected data path: %s", d.DataPath())
	}
	if d.QdrantPath() != "/tmp/lectern-test/qdrant" {
		t.Errorf("unexpected qdrant path: %s", d.QdrantPath())
	}
	if d.ConfigPath() != "/tmp/lectern-test/config.yaml" {
		t.Errorf("unexpected config path: %s", d.ConfigPath())
	}
	if d.SnapshotPath("lectern") != "/tmp/lectern-test/data/lectern.index.json" {
		t.Errorf("unexpected snapshot path: %s", d.SnapshotPath("lectern"))
	}
}

func TestEnsureExists(t *testing.T) {
	tmp := t.TempDir()
	d, err := New(filepath.Join(tmp, "home"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Exists() {
		t.Error("expected home to not exist yet")
	}

	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !d.Exists() {
		t.Error("expected home to exist")
	}
	if _, err := os.Stat(d.DataPath()); err != nil {
		t.Errorf("expected data dir to exist: %v", err)
	}
}
