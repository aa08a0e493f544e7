// Package textproc cleans extracted e-book text and splits it into
// synthesis-sized segments.
package textproc

import (
	"regexp"
	"strings"
)

// cleanupPass is a single structural rewrite applied to raw text.
type cleanupPass struct {
	re   *regexp.Regexp
	repl string
}

// Structural passes run in order on every input. Later passes assume the
// whitespace collapse performed by earlier ones.
var structuralPasses = []cleanupPass{
	// HTML entities left over from imperfect markup conversion.
	{regexp.MustCompile(`&[a-zA-Z0-9#]+;`), " "},
	// Collapse all whitespace runs, including newlines, to single spaces.
	{regexp.MustCompile(`\s+`), " "},
	// Page-number artifacts and bare number ranges (print layout debris).
	{regexp.MustCompile(`\b[Pp]age\s+\d+\b`), ""},
	{regexp.MustCompile(`\b\d+\s*[-–—]\s*\d+\b`), ""},
	// Unify curly quotes and backticks to plain double quotes.
	{regexp.MustCompile("[“”‘’`]"), `"`},
	// Unify en/em dashes.
	{regexp.MustCompile(`[–—]`), "-"},
	// Collapse runs of periods to a single ellipsis.
	{regexp.MustCompile(`\.{3,}`), "..."},
	// Normalize spacing around punctuation.
	{regexp.MustCompile(`\s+([,.!?;:])`), "${1}"},
	{regexp.MustCompile(`([,.!?;:])\s+`), "${1} "},
}

var (
	// Hyphenation broken across a line boundary. The structural passes have
	// already collapsed the newline, leaving "word- break".
	hyphenationRe = regexp.MustCompile(`(\w+)-\s+(\w+)`)

	// Missing space after a sentence end before a capital letter.
	sentenceBoundaryRe = regexp.MustCompile(`([.!?])\s*([A-Z])`)
)

// abbreviation maps a written form to its spoken expansion. Expanding these
// avoids TTS engines reading "Dr." as "dee are".
type abbreviation struct {
	re        *regexp.Regexp
	expansion string
}

var abbreviations = []abbreviation{
	{regexp.MustCompile(`\bMr\.`), "Mister"},
	{regexp.MustCompile(`\bMrs\.`), "Missus"},
	{regexp.MustCompile(`\bDr\.`), "Doctor"},
	{regexp.MustCompile(`\bProf\.`), "Professor"},
	{regexp.MustCompile(`\bSt\.`), "Saint"},
	{regexp.MustCompile(`\bvs\.`), "versus"},
	{regexp.MustCompile(`\betc\.`), "etcetera"},
	{regexp.MustCompile(`\bi\.e\.`), "that is"},
	{regexp.MustCompile(`\be\.g\.`), "for example"},
}

// Normalizer rewrites raw HTML-derived chapter text into TTS-friendly prose.
// The zero value is not usable; construct with NewNormalizer.
type Normalizer struct{}

// NewNormalizer creates a text normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize applies the fixed structural cleanup sequence and, when
// aggressive is set, the semantic rewrites (hyphenation repair, abbreviation
// expansion, sentence-boundary spacing). Structural passes always run first;
// the aggressive rules assume collapsed whitespace. The result may be empty;
// callers decide what to do with empty chapters.
func (n *Normalizer) Normalize(raw string, aggressive bool) string {
	cleaned := raw
	for _, pass := range structuralPasses {
		cleaned = pass.re.ReplaceAllString(cleaned, pass.repl)
	}

	if aggressive {
		cleaned = hyphenationRe.ReplaceAllString(cleaned, "${1}${2}")
		for _, abbr := range abbreviations {
			cleaned = abbr.re.ReplaceAllString(cleaned, abbr.expansion)
		}
		cleaned = sentenceBoundaryRe.ReplaceAllString(cleaned, "${1} ${2}")
	}

	return strings.TrimSpace(cleaned)
}

// WordCount reports the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
