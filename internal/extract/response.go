package extract

import (
	"regexp"
	"strings"
)

var (
	arrayRE  = regexp.MustCompile(`(?s)\[.*\]`)
	objectRE = regexp.MustCompile(`(?s)\{.*\}`)
)

// CleanResponse strips the wrappers models put around JSON output: a
// reasoning preamble terminated by </think>, and markdown code fences.
func CleanResponse(raw string) string {
	content := strings.TrimSpace(raw)
	if _, after, found := strings.Cut(content, "</think>"); found {
		content = after
	}
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// ExtractArray returns the first bracket-delimited JSON array substring.
func ExtractArray(s string) (string, bool) {
	m := arrayRE.FindString(s)
	return m, m != ""
}

// ExtractObject returns the first brace-delimited JSON object substring.
func ExtractObject(s string) (string, bool) {
	m := objectRE.FindString(s)
	return m, m != ""
}
