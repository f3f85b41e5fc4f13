package chunk

import (
	"log/slog"
	"strings"

	"github.com/lectern-ai/lectern/internal/structure"
)

// Default sizing for the fixed-size fallback. All three are configurable.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultMinChunkSize = 100
)

// Segmenter walks normalized text against a detected outline and produces
// content chunks.
type Segmenter struct {
	chunkSize       int
	overlap         int
	minChunkSize    int
	extractKeywords bool
	logger          *slog.Logger
}

// SegmenterConfig configures a Segmenter.
type SegmenterConfig struct {
	ChunkSize       int
	ChunkOverlap    int
	MinChunkSize    int
	ExtractKeywords bool
	Logger          *slog.Logger
}

// NewSegmenter creates a segmenter with the given config.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = DefaultMinChunkSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Segmenter{
		chunkSize:       cfg.ChunkSize,
		overlap:         cfg.ChunkOverlap,
		minChunkSize:    cfg.MinChunkSize,
		extractKeywords: cfg.ExtractKeywords,
		logger:          cfg.Logger,
	}
}

// Segment splits text into chunks guided by the outline. When no chapters
// were detected it falls back to fixed-size splitting; one giant chunk is
// never a valid result for text longer than the chunk size.
func (s *Segmenter) Segment(text string, outline *structure.Outline) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Chunk{}
	}

	var chunks []Chunk
	if outline == nil || !outline.HasStructure() {
		s.logger.Debug("no structure detected, using fixed-size chunking")
		chunks = s.fixedSize(text, "", "")
	} else {
		chunks = s.structured(text, outline)
	}

	finalize(chunks)
	return chunks
}

// structured walks blank-line-delimited paragraphs against the outline.
func (s *Segmenter) structured(text string, outline *structure.Outline) []Chunk {
	var (
		chunks         []Chunk
		buffer         []string
		currentChapter = -1
		currentSection = ""
		sectionCursor  = -1
	)

	chapterTitle := func() string {
		if currentChapter < 0 {
			return ""
		}
		return outline.Chapters[currentChapter].Title
	}

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(buffer, "\n\n"))
		buffer = buffer[:0]
		if body == "" {
			return
		}
		for _, part := range s.split(body) {
			chunks = append(chunks, s.contentChunk(part, chapterTitle(), currentSection))
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		firstLine, rest := splitFirstLine(para)

		if idx, ok := matchChapter(firstLine, outline, currentChapter); ok {
			flush()
			currentChapter = idx
			currentSection = ""
			chunks = append(chunks, Chunk{
				Text:         firstLine,
				Type:         TypeChapterMarker,
				ChapterTitle: outline.Chapters[idx].Title,
			})
			if rest != "" {
				buffer = append(buffer, rest)
			}
			continue
		}

		if idx, ok := matchSection(firstLine, outline, chapterTitle(), sectionCursor); ok {
			flush()
			sectionCursor = idx
			currentSection = outline.Sections[idx].Title
			chunks = append(chunks, Chunk{
				Text:         firstLine,
				Type:         TypeSectionMarker,
				ChapterTitle: chapterTitle(),
				SectionTitle: currentSection,
			})
			if rest != "" {
				buffer = append(buffer, rest)
			}
			continue
		}

		buffer = append(buffer, para)
	}
	flush()

	return chunks
}

// contentChunk builds a content-typed chunk, refining the type by keyword
// sniffing and optionally attaching keywords.
func (s *Segmenter) contentChunk(text, chapter, section string) Chunk {
	c := Chunk{
		Text:         text,
		Type:         refineType(text),
		ChapterTitle: chapter,
		SectionTitle: section,
	}
	if s.extractKeywords {
		c.Keywords = extractKeywords(text)
	}
	return c
}

// fixedSize splits text into size-bounded chunks with overlap. Operates on
// runes so multi-byte characters never split mid-sequence.
func (s *Segmenter) fixedSize(text, chapter, section string) []Chunk {
	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []Chunk{s.contentChunk(text, chapter, section)}
	}

	var chunks []Chunk
	step := s.chunkSize - s.overlap
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			// A short tail merges into the previous chunk instead of
			// producing a fragment below the minimum size.
			if len([]rune(piece)) < s.minChunkSize && len(chunks) > 0 {
				last := &chunks[len(chunks)-1]
				last.Text = strings.TrimSpace(last.Text + " " + piece)
				if s.extractKeywords {
					last.Keywords = extractKeywords(last.Text)
				}
			} else {
				chunks = append(chunks, s.contentChunk(piece, chapter, section))
			}
		}

		if end == len(runes) {
			break
		}
	}
	return chunks
}

// split applies fixed-size splitting to oversized structured content so every
// chunk stays bounded.
func (s *Segmenter) split(body string) []string {
	if len([]rune(body)) <= s.chunkSize {
		return []string{body}
	}
	parts := s.fixedSize(body, "", "")
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.Text
	}
	return texts
}

// finalize assigns dense indexes, back-fills totals, and derives IDs.
func finalize(chunks []Chunk) {
	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].TotalChunks = len(chunks)
		chunks[i].ID = chunkID(chunks[i].Text, i)
	}
}

// splitFirstLine separates a paragraph's first line from the remainder.
func splitFirstLine(para string) (first, rest string) {
	if i := strings.IndexByte(para, '\n'); i >= 0 {
		return strings.TrimSpace(para[:i]), strings.TrimSpace(para[i+1:])
	}
	return para, ""
}

// matchChapter tests the first line of a paragraph against upcoming chapter
// titles/numbers. Matching is loose substring containment against the first
// line only; anchoring to the line keeps short titles from firing
// mid-paragraph. Rewinds are not allowed: only chapters after the current
// one are candidates.
func matchChapter(firstLine string, outline *structure.Outline, current int) (int, bool) {
	lower := strings.ToLower(firstLine)
	for i := current + 1; i < len(outline.Chapters); i++ {
		ch := outline.Chapters[i]
		if ch.Title != "" && strings.Contains(lower, strings.ToLower(ch.Title)) {
			return i, true
		}
		if ch.Number != "" && strings.Contains(lower, strings.ToLower("chapter "+ch.Number)) {
			return i, true
		}
	}
	return 0, false
}

// matchSection tests the first line against not-yet-consumed sections of the
// open chapter. Sections are consumed forward-only like chapters: body text
// that merely contains an earlier section's title cannot re-open it.
func matchSection(firstLine string, outline *structure.Outline, chapterTitle string, current int) (int, bool) {
	if chapterTitle == "" {
		return 0, false
	}
	lower := strings.ToLower(firstLine)
	for i := current + 1; i < len(outline.Sections); i++ {
		sec := outline.Sections[i]
		if sec.ChapterTitle != chapterTitle {
			continue
		}
		if sec.Title != "" && strings.Contains(lower, strings.ToLower(sec.Title)) {
			return i, true
		}
		if sec.Number != "" && strings.HasPrefix(lower, sec.Number+" ") {
			return i, true
		}
	}
	return 0, false
}
