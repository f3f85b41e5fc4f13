package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtract_MissingFile(t *testing.T) {
	_, err := Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for invalid PDF")
	}

	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
	if extErr.Path != path {
		t.Errorf("expected path %s in error, got %s", path, extErr.Path)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"intro-to-statistics.pdf", "Intro To Statistics"},
		{"/books/linear_algebra.pdf", "Linear Algebra"},
		{"physics.pdf", "Physics"},
		{"Calculus Vol 1.pdf", "Calculus Vol 1"},
	}

	for _, tt := range tests {
		if got := deriveTitle(tt.path); got != tt.want {
			t.Errorf("deriveTitle(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
