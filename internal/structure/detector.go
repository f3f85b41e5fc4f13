// Package structure infers chapter/section outlines from normalized textbook
// text using an ordered table of heading heuristics.
package structure

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxChapters caps the outline size on pathological documents
// (e.g. running headers misdetected as chapters).
const DefaultMaxChapters = 50

// DefaultMinConfidence is the floor below which matches are discarded.
const DefaultMinConfidence = 0.7

// ChapterEntry is one detected chapter, ordered by document position.
type ChapterEntry struct {
	Title      string  `json:"title"`
	Number     string  `json:"number"`
	StartLine  int     `json:"start_line"`
	EndLine    int     `json:"end_line"` // -1 until the next chapter closes it
	Confidence float64 `json:"confidence"`
}

// SectionEntry is one detected section, attached to the chapter open at
// detection time.
type SectionEntry struct {
	Title        string  `json:"title"`
	Number       string  `json:"number"`
	ChapterTitle string  `json:"chapter_title"`
	Level        int     `json:"level"`
	Confidence   float64 `json:"confidence"`
}

// Outline is the detection result. Empty lists with zero quality are a valid
// state; the chunker falls back to fixed-size splitting.
type Outline struct {
	Chapters     []ChapterEntry `json:"chapters"`
	Sections     []SectionEntry `json:"sections"`
	QualityScore float64        `json:"quality_score"`
}

// HasStructure reports whether any chapters were detected.
func (o *Outline) HasStructure() bool {
	return len(o.Chapters) > 0
}

// Detector scans text line-by-line for chapter and section headings.
type Detector struct {
	minConfidence float64
	maxChapters   int
	logger        *slog.Logger
}

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	// MinConfidence discards matches below this weight (default: 0.7).
	MinConfidence float64
	// MaxChapters caps the outline (default: 50).
	MaxChapters int
	Logger      *slog.Logger
}

// NewDetector creates a detector with the given config.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	if cfg.MaxChapters <= 0 {
		cfg.MaxChapters = DefaultMaxChapters
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Detector{
		minConfidence: cfg.MinConfidence,
		maxChapters:   cfg.MaxChapters,
		logger:        cfg.Logger,
	}
}

// Detect builds an outline for the text. It never fails: text without
// recognizable structure yields empty lists and zero quality.
func (d *Detector) Detect(text string) *Outline {
	outline := &Outline{
		Chapters: []ChapterEntry{},
		Sections: []SectionEntry{},
	}

	var (
		confidenceSum float64
		matchCount    int
		current       = -1 // index of the open chapter, -1 before the first one
	)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxHeadingLen {
			continue
		}
		if isNonHeading(line) {
			continue
		}

		// Chapter rules are tested before section rules so a line matching
		// both classifies as a chapter.
		if number, title, conf, ok := matchRules(chapterRules, line); ok && conf >= d.minConfidence {
			if title == "" {
				title = line
			}
			if number == "" {
				number = strconv.Itoa(len(outline.Chapters) + 1)
			}

			// Close the previous chapter at the line before this one.
			if current >= 0 {
				outline.Chapters[current].EndLine = i - 1
			}

			outline.Chapters = append(outline.Chapters, ChapterEntry{
				Title:      title,
				Number:     number,
				StartLine:  i,
				EndLine:    -1,
				Confidence: conf,
			})
			current = len(outline.Chapters) - 1

			confidenceSum += conf
			matchCount++
			continue
		}

		// Sections outside any chapter are discarded.
		if current < 0 {
			continue
		}

		if number, title, conf, ok := matchRules(sectionRules, line); ok && conf >= d.minConfidence {
			if title == "" {
				title = line
			}
			outline.Sections = append(outline.Sections, SectionEntry{
				Title:        title,
				Number:       number,
				ChapterTitle: outline.Chapters[current].Title,
				Level:        sectionLevel(number),
				Confidence:   conf,
			})
			confidenceSum += conf
			matchCount++
		}
	}

	if matchCount > 0 {
		outline.QualityScore = confidenceSum / float64(matchCount)
	}

	d.capChapters(outline)

	d.logger.Debug("structure detection complete",
		"chapters", len(outline.Chapters),
		"sections", len(outline.Sections),
		"quality", outline.QualityScore)

	return outline
}

// matchRules tries each rule in order; first match wins.
func matchRules(rules []headingRule, line string) (number, title string, confidence float64, ok bool) {
	for _, rule := range rules {
		if m := rule.re.FindStringSubmatch(line); m != nil {
			number, title = rule.extract(m)
			return number, title, rule.confidence, true
		}
	}
	return "", "", 0, false
}

// capChapters enforces the chapter cap: keep the highest-confidence entries,
// then re-sort by document position to restore order. Sections belonging to
// dropped chapters go with them.
func (d *Detector) capChapters(o *Outline) {
	if len(o.Chapters) <= d.maxChapters {
		return
	}

	d.logger.Warn("chapter cap exceeded, keeping highest-confidence entries",
		"detected", len(o.Chapters), "cap", d.maxChapters)

	byConfidence := make([]ChapterEntry, len(o.Chapters))
	copy(byConfidence, o.Chapters)
	sort.SliceStable(byConfidence, func(i, j int) bool {
		return byConfidence[i].Confidence > byConfidence[j].Confidence
	})
	kept := byConfidence[:d.maxChapters]

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].StartLine < kept[j].StartLine
	})
	o.Chapters = kept

	keptTitles := make(map[string]bool, len(kept))
	for _, ch := range kept {
		keptTitles[ch.Title] = true
	}
	sections := o.Sections[:0]
	for _, s := range o.Sections {
		if keptTitles[s.ChapterTitle] {
			sections = append(sections, s)
		}
	}
	o.Sections = sections
}

// sectionLevel derives nesting depth from the section number:
// "3.1" is level 1, "3.1.2" is level 2. Unnumbered sections are level 1.
func sectionLevel(number string) int {
	if dots := strings.Count(number, "."); dots > 0 {
		return dots
	}
	return 1
}
