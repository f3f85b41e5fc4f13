package normalize

import (
	"strings"
	"testing"
)

func TestNormalize_SpacingRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase to uppercase", "wordBoundary", "word Boundary"},
		{"letter to digit", "Chapter1", "Chapter 1"},
		{"digit to letter", "1Introduction", "1 Introduction"},
		{"sentence punctuation", "The end.Next sentence", "The end. Next sentence"},
		{"already spaced", "normal text here", "normal text here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input).Text
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Whitespace(t *testing.T) {
	t.Run("collapses space runs", func(t *testing.T) {
		got := Normalize("too    many\tspaces").Text
		if got != "too many spaces" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("collapses blank line runs to paragraph break", func(t *testing.T) {
		got := Normalize("para one\n\n\n\n\npara two").Text
		if got != "para one\n\npara two" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("trims lines", func(t *testing.T) {
		got := Normalize("  indented line  \nnext").Text
		if got != "indented line\nnext" {
			t.Errorf("got %q", got)
		}
	})
}

func TestNormalize_Removals(t *testing.T) {
	t.Run("strips standalone page numbers", func(t *testing.T) {
		got := Normalize("some text\n42\nmore text").Text
		if strings.Contains(got, "42") {
			t.Errorf("page number survived: %q", got)
		}
	})

	t.Run("strips page x of y footers", func(t *testing.T) {
		got := Normalize("content\nPage 3 of 120\nmore content").Text
		if strings.Contains(strings.ToLower(got), "page") {
			t.Errorf("footer survived: %q", got)
		}
	})

	t.Run("strips urls", func(t *testing.T) {
		got := Normalize("see https://example.com/resource for more").Text
		if strings.Contains(got, "example.com") {
			t.Errorf("url survived: %q", got)
		}
	})

	t.Run("strips emails", func(t *testing.T) {
		got := Normalize("contact author@university.edu today").Text
		if strings.Contains(got, "@") {
			t.Errorf("email survived: %q", got)
		}
	})

	t.Run("keeps inline numbers", func(t *testing.T) {
		got := Normalize("there are 12 examples in this chapter").Text
		if !strings.Contains(got, "12") {
			t.Errorf("inline number removed: %q", got)
		}
	})
}

func TestNormalize_MathDetection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"math symbol", "the integral ∫ f(x) dx", true},
		{"math keyword", "By the fundamental theorem of calculus", true},
		{"latex delimiter", `consider \frac{a}{b} here`, true},
		{"equation pattern", "where y = mx for all x", true},
		{"plain prose", "The quick brown fox jumps over the lazy dog", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input).HasMath
			if got != tt.want {
				t.Errorf("HasMath = %v, want %v for %q", got, tt.want, tt.input)
			}
		})
	}
}

func TestNormalize_CannotFail(t *testing.T) {
	// Degenerate inputs pass through without panicking.
	for _, input := range []string{"", "   ", "\n\n\n", "\x00weird\x01bytes"} {
		_ = Normalize(input)
	}
}
