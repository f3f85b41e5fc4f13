// Package normalize repairs spacing and layout artifacts left behind by PDF
// text extraction.
package normalize

import (
	"regexp"
	"strings"
)

// Result is normalized text plus advisory flags derived from it.
type Result struct {
	Text    string
	HasMath bool
}

// substitution is one spacing-repair pass. Passes run in order; each one
// operates on the output of the previous.
type substitution struct {
	re   *regexp.Regexp
	repl string
}

// spacingRepairs fix words that extraction ran together. Order matters.
var spacingRepairs = []substitution{
	// lowercase→uppercase transition: "wordWord" -> "word Word"
	{regexp.MustCompile(`([a-z])([A-Z])`), "$1 $2"},
	// letter→digit and digit→letter transitions: "Chapter1", "2nd" stays split
	{regexp.MustCompile(`([A-Za-z])([0-9])`), "$1 $2"},
	{regexp.MustCompile(`([0-9])([A-Za-z])`), "$1 $2"},
	// sentence punctuation directly followed by a letter: "end.Next" -> "end. Next"
	{regexp.MustCompile(`([.!?])([A-Za-z])`), "$1 $2"},
	// lowercase run glued to a capitalized word: "theTheorem" was caught above,
	// this pass handles the residue after digit splits
	{regexp.MustCompile(`([a-z]{2})([A-Z][a-z])`), "$1 $2"},
}

// Removal passes. Each is independent so a misfire in one pattern does not
// cascade into another.
var (
	pageNumberLine = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	pageXofY       = regexp.MustCompile(`(?mi)^[ \t]*page[ \t]+\d+([ \t]+of[ \t]+\d+)?[ \t]*$`)
	urlPattern     = regexp.MustCompile(`(https?://|www\.)\S+`)
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Whitespace normalization.
var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Math-content detection: a boolean OR across symbol, keyword, and LaTeX
// delimiter patterns. Advisory metadata only; never gates processing.
var mathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[∫∑∏√±≤≥≠≈∞∂∇θλμσπΔΩ∈∉⊂⊆∪∩]`),
	regexp.MustCompile(`(?i)\b(theorem|lemma|proof|corollary|equation|formula|derivative|integral)\b`),
	regexp.MustCompile(`\\\(|\\\)|\\\[|\\\]|\$\$|\\begin\{|\\frac|\\sum|\\int`),
	regexp.MustCompile(`\b[a-z]\s*[=<>]\s*[a-z0-9(]`),
}

// Normalize repairs extraction artifacts and collapses whitespace.
// It cannot fail; malformed input simply passes through the same passes.
func Normalize(raw string) Result {
	text := repairSpacing(raw)
	text = stripArtifacts(text)
	text = collapseWhitespace(text)

	return Result{
		Text:    text,
		HasMath: detectMath(text),
	}
}

// repairSpacing applies the ordered substitution list.
func repairSpacing(text string) string {
	for _, s := range spacingRepairs {
		text = s.re.ReplaceAllString(text, s.repl)
	}
	return text
}

// stripArtifacts removes page numbers, headers/footers, URLs, and emails.
func stripArtifacts(text string) string {
	text = pageXofY.ReplaceAllString(text, "")
	text = pageNumberLine.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	return text
}

// collapseWhitespace squeezes space runs, trims lines, and limits blank runs
// to a single paragraph break.
func collapseWhitespace(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	text = newlineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// detectMath reports whether any math pattern appears in the text.
func detectMath(text string) bool {
	for _, re := range mathPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
