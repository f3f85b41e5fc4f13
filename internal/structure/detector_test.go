package structure

import (
	"fmt"
	"strings"
	"testing"
)

func newTestDetector() *Detector {
	return NewDetector(DetectorConfig{})
}

func TestDetect_ChapterPatterns(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantNumber string
		wantTitle  string
		wantConf   float64
	}{
		{"explicit chapter", "Chapter 3: Linear Maps", "3", "Linear Maps", 0.95},
		{"chapter with period", "Chapter 2. Derivatives", "2", "Derivatives", 0.95},
		{"roman numeral chapter", "Chapter IV: Integrals", "IV", "Integrals", 0.95},
		{"bare numbered", "3: Linear Maps", "3", "Linear Maps", 0.85},
		{"unit", "Unit 2: Geometry", "2", "Geometry", 0.80},
		{"part", "Part II: Analysis", "II", "Analysis", 0.80},
		{"capitalized heading", "Linear Transformations and Matrices", "1", "Linear Transformations and Matrices", 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outline := newTestDetector().Detect(tt.line)
			if len(outline.Chapters) != 1 {
				t.Fatalf("expected 1 chapter, got %d", len(outline.Chapters))
			}
			ch := outline.Chapters[0]
			if ch.Number != tt.wantNumber {
				t.Errorf("number = %q, want %q", ch.Number, tt.wantNumber)
			}
			if ch.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", ch.Title, tt.wantTitle)
			}
			if ch.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", ch.Confidence, tt.wantConf)
			}
		})
	}
}

func TestDetect_EndToEndScenario(t *testing.T) {
	text := "Chapter 1: Intro\nSome intro text.\n\n1.1 Basics\nBasics text here."
	outline := newTestDetector().Detect(text)

	if len(outline.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d: %+v", len(outline.Chapters), outline.Chapters)
	}
	ch := outline.Chapters[0]
	if ch.Number != "1" || ch.Title != "Intro" {
		t.Errorf("chapter = {%s, %s}, want {1, Intro}", ch.Number, ch.Title)
	}

	if len(outline.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(outline.Sections), outline.Sections)
	}
	s := outline.Sections[0]
	if s.Number != "1.1" || s.Title != "Basics" || s.ChapterTitle != "Intro" {
		t.Errorf("section = {%s, %s, %s}, want {1.1, Basics, Intro}", s.Number, s.Title, s.ChapterTitle)
	}
}

func TestDetect_ChapterBeatsSection(t *testing.T) {
	// A line matching both rule sets classifies as a chapter because chapter
	// rules are tested first.
	text := "Chapter 1: Intro\ntext\n2: Advanced Topics\nmore text"
	outline := newTestDetector().Detect(text)

	if len(outline.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(outline.Chapters))
	}
	if outline.Chapters[1].Title != "Advanced Topics" {
		t.Errorf("second chapter = %q", outline.Chapters[1].Title)
	}
}

func TestDetect_OrphanSectionsDropped(t *testing.T) {
	// Section heading before any chapter is discarded.
	text := "1.1 Early Section\nsome text\nChapter 1: Real Start\nbody"
	outline := newTestDetector().Detect(text)

	if len(outline.Sections) != 0 {
		t.Errorf("expected orphan section dropped, got %+v", outline.Sections)
	}
	if len(outline.Chapters) != 1 {
		t.Errorf("expected 1 chapter, got %d", len(outline.Chapters))
	}
}

func TestDetect_NonHeadingPrefixes(t *testing.T) {
	for _, line := range []string{
		"Preface",
		"Copyright 2024 Example Press",
		"Index of Terms",
		"Appendix A",
		"Bibliography",
	} {
		outline := newTestDetector().Detect(line)
		if len(outline.Chapters) != 0 {
			t.Errorf("%q should not match as a chapter", line)
		}
	}
}

func TestDetect_LongLinesSkipped(t *testing.T) {
	line := "Chapter 1: " + strings.Repeat("very long prose that is clearly not a heading ", 5)
	outline := newTestDetector().Detect(line)
	if len(outline.Chapters) != 0 {
		t.Error("over-length line should be skipped")
	}
}

func TestDetect_ChapterEndInference(t *testing.T) {
	text := "Chapter 1: First\nline one\nline two\nChapter 2: Second\nline three"
	outline := newTestDetector().Detect(text)

	if len(outline.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(outline.Chapters))
	}
	if outline.Chapters[0].EndLine != 2 {
		t.Errorf("first chapter end = %d, want 2", outline.Chapters[0].EndLine)
	}
	if outline.Chapters[1].EndLine != -1 {
		t.Errorf("last chapter end = %d, want -1 (open)", outline.Chapters[1].EndLine)
	}
}

func TestDetect_NoStructure(t *testing.T) {
	outline := newTestDetector().Detect("just some plain prose.\nwith nothing heading-like in it.")

	if outline.HasStructure() {
		t.Error("expected no structure")
	}
	if outline.QualityScore != 0 {
		t.Errorf("quality = %v, want 0", outline.QualityScore)
	}
	if outline.Chapters == nil || outline.Sections == nil {
		t.Error("expected empty (non-nil) lists")
	}
}

func TestDetect_QualityScore(t *testing.T) {
	// One 0.95 chapter and one 0.90 section average to 0.925.
	text := "Chapter 1: Intro\ntext\n1.1 Basics\ntext"
	outline := newTestDetector().Detect(text)

	want := (0.95 + 0.90) / 2
	if diff := outline.QualityScore - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("quality = %v, want %v", outline.QualityScore, want)
	}
}

func TestDetect_ChapterCap(t *testing.T) {
	var b strings.Builder
	// 55 high-confidence chapters followed by 10 weak heuristic ones.
	for i := 1; i <= 55; i++ {
		fmt.Fprintf(&b, "Chapter %d: Topic %d\nbody text\n", i, i)
	}
	for i := 0; i < 10; i++ {
		b.WriteString("Assorted Heading Words Here\nbody text\n")
	}

	outline := newTestDetector().Detect(b.String())

	if len(outline.Chapters) != DefaultMaxChapters {
		t.Fatalf("expected %d chapters, got %d", DefaultMaxChapters, len(outline.Chapters))
	}
	// Kept entries are the high-confidence ones, restored to document order.
	for i := 1; i < len(outline.Chapters); i++ {
		if outline.Chapters[i].StartLine <= outline.Chapters[i-1].StartLine {
			t.Fatal("chapters not in document order after cap")
		}
	}
	for _, ch := range outline.Chapters {
		if ch.Confidence < 0.95 {
			t.Errorf("low-confidence chapter survived the cap: %+v", ch)
		}
	}
}

func TestDetect_SectionLevels(t *testing.T) {
	text := "Chapter 1: Intro\ntext\n1.1 Basics\ntext\n1.1.2 Details\ntext"
	outline := newTestDetector().Detect(text)

	if len(outline.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(outline.Sections), outline.Sections)
	}
	if outline.Sections[0].Level != 1 {
		t.Errorf("N.N level = %d, want 1", outline.Sections[0].Level)
	}
	if outline.Sections[1].Level != 2 {
		t.Errorf("N.N.N level = %d, want 2", outline.Sections[1].Level)
	}
}
