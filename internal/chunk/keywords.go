package chunk

import (
	"regexp"
	"strings"
)

// maxKeywords caps the keyword list per chunk. Keywords are an exposure aid
// for metadata filtering, not a ranked extraction.
const maxKeywords = 10

var stopWords = map[string]bool{
	"about": true, "after": true, "again": true, "also": true, "been": true,
	"before": true, "being": true, "between": true, "both": true, "could": true,
	"does": true, "each": true, "from": true, "have": true, "here": true,
	"into": true, "more": true, "most": true, "other": true, "over": true,
	"same": true, "should": true, "some": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "then": true, "there": true,
	"these": true, "they": true, "this": true, "those": true, "through": true,
	"under": true, "very": true, "were": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "will": true,
	"with": true, "would": true, "your": true,
}

var wordChars = regexp.MustCompile(`^[a-z]+$`)

// extractKeywords pulls distinct lowercase terms from the text: split on
// whitespace, strip punctuation, drop stop-words and tokens outside the
// length filter, dedupe in order, cap.
func extractKeywords(text string) []string {
	seen := make(map[string]bool)
	var keywords []string

	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(token, ".,;:!?()[]{}\"'`—-")
		if len(word) < 4 || len(word) > 20 {
			continue
		}
		if !wordChars.MatchString(word) {
			continue
		}
		if stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == maxKeywords {
			break
		}
	}

	return keywords
}

// Content-type keyword tables checked in priority order:
// definition > example > exercise. First matching category wins.
var contentTypeChecks = []struct {
	chunkType Type
	keywords  []string
}{
	{TypeDefinition, []string{"definition", "is defined as", "we define", "refers to", "means that"}},
	{TypeExample, []string{"example", "for instance", "for example", "consider the following"}},
	{TypeExercise, []string{"exercise", "problem set", "prove that", "show that", "solve the"}},
}

// refineType sniffs the content for category keywords, overriding the
// default content type when one matches.
func refineType(text string) Type {
	lower := strings.ToLower(text)
	for _, check := range contentTypeChecks {
		for _, kw := range check.keywords {
			if strings.Contains(lower, kw) {
				return check.chunkType
			}
		}
	}
	return TypeContent
}
