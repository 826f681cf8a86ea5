package segment

import (
	"regexp"
	"strings"
)

// The upstream font-size/center-alignment heuristic flags slogans, date
// lines and parenthesized stage directions as headings. These patterns
// identify such false positives; a candidate matching any of them is
// rejected.
var negativeHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^बंदे\s+मातरम्`),
	regexp.MustCompile(`^जयहिंद\s*!?\s*जयमहाराष्ट्र\s*!?`),
	regexp.MustCompile(`^\(\s*स्थगितीनंतर\s*\)`),
	regexp.MustCompile(`^[0-9०-९]{1,2}\s*मार्च\s*[0-9०-९]{4}`),
	regexp.MustCompile(`^[0-9०-९]{1,2}\s*[A-Za-z]+\s*[0-9]{4}`),
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`^[0-9०-९]+$`),
	regexp.MustCompile(`^\(.*\)$`),
}

// validHeading reports whether a heading candidate is a plausible debate
// topic rather than a layout-heuristic false positive.
func validHeading(heading string) bool {
	trimmed := strings.TrimSpace(heading)
	if trimmed == "" {
		return false
	}
	for _, pat := range negativeHeadingPatterns {
		if pat.MatchString(trimmed) {
			return false
		}
	}
	return true
}
