// Package match locates heading strings inside noisy OCR page text.
//
// OCR introduces spacing noise, broken diacritics and merged or split words,
// so a single search strategy is not enough. Locate escalates through exact,
// normalized, fuzzy, partial-prefix and punctuation-stripped searches, with
// the fuzzy path bounded by a high similarity floor to avoid false positives.
package match

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
)

// NotFound is returned by Locate when no strategy matched.
const NotFound = -1

// Options tunes the fuzzy matching thresholds (0-100 scale).
type Options struct {
	// FuzzyAccept is the minimum line similarity accepted as a match.
	FuzzyAccept float64
	// FuzzyNear is the floor above which a rejected line is logged as a
	// near-miss for OCR diagnostics.
	FuzzyNear float64
}

// DefaultOptions returns the production thresholds.
func DefaultOptions() Options {
	return Options{FuzzyAccept: 85, FuzzyNear: 70}
}

// Matcher locates headings in page text.
type Matcher struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Matcher {
	if opts.FuzzyAccept == 0 {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{opts: opts, logger: logger}
}

var (
	dandaRE = regexp.MustCompile(`[।॥]`)
	// Combining marks (\p{M}) carry Devanagari dependent vowels and virama;
	// stripping them would reduce words to consonant skeletons.
	nonWordRE = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s]`)
)

// Normalize strips sentence-delimiter punctuation and all whitespace,
// keeping letters and digits of any script. Used for spacing-insensitive
// comparison of OCR text.
func Normalize(s string) string {
	s = dandaRE.ReplaceAllString(s, "")
	s = nonWordRE.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), "")
}

// normalizeIndexed returns the normalized form of s plus, for every byte of
// the normalized string, the byte offset it came from in s.
func normalizeIndexed(s string) (string, []int) {
	var b strings.Builder
	var idx []int
	for i, r := range s {
		if r == '।' || r == '॥' {
			continue
		}
		if nonWordRE.MatchString(string(r)) {
			continue
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			continue
		}
		start := b.Len()
		b.WriteRune(r)
		for j := start; j < b.Len(); j++ {
			idx = append(idx, i)
		}
	}
	return b.String(), idx
}

// Locate finds heading in pageText and returns its byte offset, or NotFound.
// Strategies are tried in order; the first success wins.
func (m *Matcher) Locate(heading, pageText string) int {
	// 1. Exact substring.
	if pos := strings.Index(pageText, heading); pos != -1 {
		return pos
	}

	normHeading := Normalize(heading)

	// 2. Normalized match, re-located in the raw text.
	if normHeading != "" {
		normPage, idx := normalizeIndexed(pageText)
		if npos := strings.Index(normPage, normHeading); npos != -1 {
			// Prefer the raw heading prefix as an anchor; fall back to the
			// offset map when OCR spacing broke the prefix too.
			if anchor := runePrefix(heading, 10); anchor != "" {
				if pos := strings.Index(pageText, anchor); pos != -1 {
					return pos
				}
			}
			return idx[npos]
		}
	}

	// 3. Fuzzy line match.
	if pos := m.fuzzyLine(heading, normHeading, pageText); pos != -1 {
		return pos
	}

	// 4. Progressive partial prefix for long headings.
	runes := []rune(heading)
	if len(runes) > 10 {
		for n := len(runes) - 10; n > 5; n-- {
			if pos := strings.Index(pageText, string(runes[:n])); pos != -1 {
				return pos
			}
		}
	}

	// 5. Punctuation-stripped exact match.
	stripped := nonWordRE.ReplaceAllString(heading, "")
	if stripped != heading {
		if pos := strings.Index(pageText, stripped); pos != -1 {
			return pos
		}
	}

	// 6. Whitespace-collapsed exact match.
	collapsed := strings.Join(strings.Fields(heading), " ")
	if collapsed != heading {
		if pos := strings.Index(pageText, collapsed); pos != -1 {
			return pos
		}
	}

	return NotFound
}

func (m *Matcher) fuzzyLine(heading, normHeading, pageText string) int {
	if normHeading == "" {
		return -1
	}
	best := 0.0
	bestLine := ""
	for _, line := range strings.Split(pageText, "\n") {
		if len([]rune(strings.TrimSpace(line))) < 3 {
			continue
		}
		sim := levenshtein.Similarity(Normalize(line), normHeading, nil) * 100
		if sim > best {
			best = sim
			bestLine = line
		}
	}
	if best > m.opts.FuzzyAccept {
		return strings.Index(pageText, bestLine)
	}
	if best > m.opts.FuzzyNear {
		m.logger.Debug("heading near-miss",
			"similarity", best,
			"heading", truncate(heading, 50),
			"line", truncate(bestLine, 50),
		)
	}
	return -1
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return ""
	}
	return string(runes[:n])
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
