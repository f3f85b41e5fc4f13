package chunk

import (
	"strings"
	"testing"

	"github.com/lectern-ai/lectern/internal/structure"
)

func newTestSegmenter() *Segmenter {
	return NewSegmenter(SegmenterConfig{ExtractKeywords: true})
}

func detect(t *testing.T, text string) *structure.Outline {
	t.Helper()
	return structure.NewDetector(structure.DetectorConfig{}).Detect(text)
}

const scenarioText = "Chapter 1: Intro\nSome intro text.\n\n1.1 Basics\nBasics text here."

func TestSegment_EndToEndScenario(t *testing.T) {
	chunks := newTestSegmenter().Segment(scenarioText, detect(t, scenarioText))

	want := []struct {
		chunkType Type
		text      string
	}{
		{TypeChapterMarker, "Chapter 1: Intro"},
		{TypeContent, "Some intro text."},
		{TypeSectionMarker, "1.1 Basics"},
		{TypeContent, "Basics text here."},
	}

	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i, w := range want {
		if chunks[i].Type != w.chunkType {
			t.Errorf("chunk %d type = %s, want %s", i, chunks[i].Type, w.chunkType)
		}
		if chunks[i].Text != w.text {
			t.Errorf("chunk %d text = %q, want %q", i, chunks[i].Text, w.text)
		}
	}

	// Section marker and its content carry chapter/section metadata.
	if chunks[2].ChapterTitle != "Intro" || chunks[2].SectionTitle != "Basics" {
		t.Errorf("section marker metadata = {%s, %s}", chunks[2].ChapterTitle, chunks[2].SectionTitle)
	}
	if chunks[3].ChapterTitle != "Intro" || chunks[3].SectionTitle != "Basics" {
		t.Errorf("content metadata = {%s, %s}", chunks[3].ChapterTitle, chunks[3].SectionTitle)
	}
}

func TestSegment_IdempotentIDs(t *testing.T) {
	s := newTestSegmenter()
	outline := detect(t, scenarioText)

	first := s.Segment(scenarioText, outline)
	second := s.Segment(scenarioText, outline)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d ID differs across runs", i)
		}
		if first[i].ID == "" {
			t.Errorf("chunk %d has empty ID", i)
		}
	}

	// Changed content yields different IDs.
	changed := s.Segment(strings.Replace(scenarioText, "Basics text", "Other text", 1), outline)
	if changed[3].ID == first[3].ID {
		t.Error("expected changed content to produce a new ID")
	}
}

func TestSegment_Coverage(t *testing.T) {
	// Concatenating non-marker chunk texts reproduces the input minus the
	// boundary marker lines.
	chunks := newTestSegmenter().Segment(scenarioText, detect(t, scenarioText))

	var parts []string
	for _, c := range chunks {
		if !c.IsMarker() {
			parts = append(parts, c.Text)
		}
	}
	got := strings.Join(parts, "\n\n")
	want := "Some intro text.\n\nBasics text here."
	if got != want {
		t.Errorf("coverage mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSegment_ConsumedSectionDoesNotRefire(t *testing.T) {
	// A body paragraph starting with an already-consumed section's title must
	// stay content; re-firing the boundary would drop its text.
	text := "Chapter 1: Intro\nSome intro text.\n\n" +
		"1.1 Sets\nSets paragraph one.\n\n" +
		"Sets paragraph two.\n\n" +
		"1.2 Growth\nGrowth paragraph."

	chunks := newTestSegmenter().Segment(text, detect(t, text))

	markers := 0
	var parts []string
	for _, c := range chunks {
		if c.IsMarker() {
			markers++
			continue
		}
		parts = append(parts, c.Text)
	}

	if markers != 3 {
		t.Errorf("expected 3 markers (1 chapter + 2 sections), got %d: %+v", markers, chunks)
	}

	got := strings.Join(parts, "\n\n")
	want := "Some intro text.\n\nSets paragraph one.\n\nSets paragraph two.\n\nGrowth paragraph."
	if got != want {
		t.Errorf("coverage mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestSegment_FallbackGuarantee(t *testing.T) {
	s := NewSegmenter(SegmenterConfig{ChunkSize: 200, ChunkOverlap: 40, MinChunkSize: 30})
	text := strings.Repeat("plain prose with no headings at all. ", 40) // ~1480 chars

	chunks := s.Segment(text, &structure.Outline{})

	if len(chunks) < 2 {
		t.Fatalf("expected fixed-size split, got %d chunk(s)", len(chunks))
	}
	for _, c := range chunks {
		if n := len([]rune(c.Text)); n > 200+30 {
			t.Errorf("chunk exceeds bound: %d runes", n)
		}
		if strings.TrimSpace(c.Text) == "" {
			t.Error("empty chunk emitted")
		}
	}
}

func TestSegment_FallbackOverlap(t *testing.T) {
	s := NewSegmenter(SegmenterConfig{ChunkSize: 100, ChunkOverlap: 20, MinChunkSize: 10})
	text := strings.Repeat("abcdefghij", 30) // 300 chars, uniform

	chunks := s.Segment(text, nil)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	// Each chunk starts chunkSize-overlap after the previous one, so the
	// tail of chunk i reappears at the head of chunk i+1.
	tail := chunks[0].Text[len(chunks[0].Text)-20:]
	if !strings.HasPrefix(chunks[1].Text, tail) {
		t.Error("expected overlap between consecutive chunks")
	}
}

func TestSegment_SmallInputSingleChunk(t *testing.T) {
	s := NewSegmenter(SegmenterConfig{ChunkSize: 1000})
	chunks := s.Segment("short text", nil)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short text" {
		t.Errorf("unexpected text: %q", chunks[0].Text)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	chunks := newTestSegmenter().Segment("   \n\n  ", nil)
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for blank input, got %d", len(chunks))
	}
}

func TestSegment_IndexesDense(t *testing.T) {
	chunks := newTestSegmenter().Segment(scenarioText, detect(t, scenarioText))

	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.TotalChunks != len(chunks) {
			t.Errorf("chunk %d total = %d, want %d", i, c.TotalChunks, len(chunks))
		}
	}
}

func TestRefineType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Type
	}{
		{"definition", "Definition 2.1: A vector space is defined as a set with two operations.", TypeDefinition},
		{"example", "Example 3: For instance, consider the sequence of squares.", TypeExample},
		{"exercise", "Exercise 4.2: Prove that the sum converges.", TypeExercise},
		{"plain content", "Vectors can be added together and scaled.", TypeContent},
		{"definition beats example", "Definition: a prime. Example: 7.", TypeDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refineType(tt.text); got != tt.want {
				t.Errorf("refineType = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Run("filters and dedupes", func(t *testing.T) {
		kws := extractKeywords("The matrix transforms the vector space. Matrix operations preserve the vector structure.")
		seen := make(map[string]bool)
		for _, k := range kws {
			if seen[k] {
				t.Errorf("duplicate keyword %q", k)
			}
			seen[k] = true
			if len(k) < 4 {
				t.Errorf("short token survived: %q", k)
			}
		}
		if !seen["matrix"] || !seen["vector"] {
			t.Errorf("expected domain terms, got %v", kws)
		}
	})

	t.Run("caps at ten", func(t *testing.T) {
		var b strings.Builder
		for _, w := range []string{
			"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
			"golf", "hotel", "india", "juliett", "kilo", "lima", "mike",
		} {
			b.WriteString(w + "word ")
		}
		if kws := extractKeywords(b.String()); len(kws) != maxKeywords {
			t.Errorf("expected %d keywords, got %d", maxKeywords, len(kws))
		}
	})

	t.Run("drops stop words and numbers", func(t *testing.T) {
		kws := extractKeywords("that would 1234 these alpha99")
		if len(kws) != 0 {
			t.Errorf("expected no keywords, got %v", kws)
		}
	})
}

func TestSegment_OversizedStructuredContent(t *testing.T) {
	s := NewSegmenter(SegmenterConfig{ChunkSize: 150, ChunkOverlap: 30, MinChunkSize: 20})
	text := "Chapter 1: Intro\n" + strings.Repeat("long body text for the chapter. ", 30)

	chunks := s.Segment(text, detect(t, text))

	if chunks[0].Type != TypeChapterMarker {
		t.Fatalf("expected leading chapter marker, got %s", chunks[0].Type)
	}
	content := chunks[1:]
	if len(content) < 2 {
		t.Fatalf("expected oversized content split, got %d content chunk(s)", len(content))
	}
	for _, c := range content {
		if c.ChapterTitle != "Intro" {
			t.Errorf("content chunk lost chapter metadata: %+v", c.ChapterTitle)
		}
	}
}
