// Package fields pulls structured fields out of debate transcript text with
// deterministic regexes, complementing the LLM extraction path.
package fields

import (
	"regexp"
	"strings"
)

var (
	wsRunRE = regexp.MustCompile(`\s+`)
	dotsRE  = regexp.MustCompile(`\.{2,}`)
	// Intra-word gaps of 3+ spaces are OCR artifacts inside a single word
	// (e.g. "गा   ायनाने"). Shorter gaps are legitimate word spacing and
	// must survive. The gap often borders a dependent vowel, so combining
	// marks (\p{M}) count as word characters here.
	intraWordGapRE = regexp.MustCompile(`([\p{L}\p{M}])[ ]{3,}([\p{L}\p{M}])`)
)

// Known OCR corruption repairs observed in production scans. Each pair is a
// broken-token pattern and its replacement.
var corruptionRepairs = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`Dev\s+vices`), "Devices"},
	{regexp.MustCompile(`Debat\s+tes`), "Debattes"},
	{regexp.MustCompile(`d\s+date`), "date"},
	{regexp.MustCompile(`t\s+topic`), "topic"},
}

// Clean normalizes OCR text: collapses whitespace runs, repairs known
// corruption patterns, closes 3+-space intra-word gaps and squashes dot runs.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	cleaned := strings.TrimSpace(text)
	for _, repair := range corruptionRepairs {
		cleaned = repair.pattern.ReplaceAllString(cleaned, repair.replacement)
	}
	cleaned = intraWordGapRE.ReplaceAllString(cleaned, "$1$2")
	cleaned = wsRunRE.ReplaceAllString(cleaned, " ")
	cleaned = dotsRE.ReplaceAllString(cleaned, ".")
	return strings.TrimSpace(cleaned)
}

// CleanAll cleans a list, dropping entries that clean to empty.
func CleanAll(items []string) []string {
	var out []string
	for _, item := range items {
		if c := Clean(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}
