package structure

import (
	"regexp"
	"strings"
)

// headingRule is one entry in an ordered rule table. Rules are tried in
// order and the first match wins, so specificity and confidence weights are
// data rather than control flow.
type headingRule struct {
	re         *regexp.Regexp
	confidence float64
	// extract pulls (number, title) out of the submatches.
	extract func(m []string) (number, title string)
}

// maxHeadingLen is the length ceiling for heading candidates. Longer lines
// are prose.
const maxHeadingLen = 100

// nonHeadingPrefixes reject front/back-matter lines that otherwise look like
// headings.
var nonHeadingPrefixes = []string{
	"author",
	"about the",
	"acknowledg",
	"appendix",
	"bibliography",
	"contents",
	"copyright",
	"glossary",
	"index",
	"preface",
}

// chapterRules, most specific first. Confidence weights run 0.95 down to 0.70.
var chapterRules = []headingRule{
	{
		// "Chapter 3: Linear Maps" / "CHAPTER IV. Integrals"
		re:         regexp.MustCompile(`(?i)^chapter\s+(\d+|[ivxlcdm]+)\s*[:.\-]?\s*(.*)$`),
		confidence: 0.95,
		extract: func(m []string) (string, string) {
			return strings.ToUpper(m[1]), strings.TrimSpace(m[2])
		},
	},
	{
		// "3: Linear Maps" / "3. Linear Maps"
		re:         regexp.MustCompile(`^(\d{1,3})[:.]\s+(\S.*)$`),
		confidence: 0.85,
		extract: func(m []string) (string, string) {
			return m[1], strings.TrimSpace(m[2])
		},
	},
	{
		// "Unit 2", "Part II: Analysis", "Module 4 - Graphs"
		re:         regexp.MustCompile(`(?i)^(?:unit|part|module)\s+(\d+|[ivxlcdm]+)\s*[:.\-]?\s*(.*)$`),
		confidence: 0.80,
		extract: func(m []string) (string, string) {
			return strings.ToUpper(m[1]), strings.TrimSpace(m[2])
		},
	},
	{
		// Capitalized multi-word heading: "Linear Transformations and Matrices"
		re:         regexp.MustCompile(`^[A-Z][A-Za-z]*(?:\s+(?:[A-Z][A-Za-z]*|of|the|and|or|in|to|for|a|an)){1,7}$`),
		confidence: 0.70,
		extract: func(m []string) (string, string) {
			return "", strings.TrimSpace(m[0])
		},
	},
}

// sectionRules, most specific first.
var sectionRules = []headingRule{
	{
		// "3.1 Vector Spaces"
		re:         regexp.MustCompile(`^(\d{1,3}\.\d{1,3})\s+(\S.*)$`),
		confidence: 0.90,
		extract: func(m []string) (string, string) {
			return m[1], strings.TrimSpace(m[2])
		},
	},
	{
		// "Section 3.1: Vector Spaces"
		re:         regexp.MustCompile(`(?i)^section\s+(\d{1,3}\.\d{1,3})\s*[:.\-]?\s*(.*)$`),
		confidence: 0.85,
		extract: func(m []string) (string, string) {
			return m[1], strings.TrimSpace(m[2])
		},
	},
	{
		// "3.1.2 Subspaces"
		re:         regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3})\s+(\S.*)$`),
		confidence: 0.80,
		extract: func(m []string) (string, string) {
			return m[1], strings.TrimSpace(m[2])
		},
	},
	{
		// Short capitalized phrase inside an open chapter
		re:         regexp.MustCompile(`^[A-Z][a-z]+(?:\s+(?:[A-Z][a-z]+|of|the|and)){1,4}$`),
		confidence: 0.70,
		extract: func(m []string) (string, string) {
			return "", strings.TrimSpace(m[0])
		},
	},
}

// isNonHeading reports whether the line starts with a known metadata prefix.
func isNonHeading(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range nonHeadingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
