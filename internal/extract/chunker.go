package extract

import "strings"

// SplitLines packs whole lines into chunks of roughly chunkSize characters.
// A line is never split across chunks; a single line longer than the budget
// becomes its own chunk.
func SplitLines(text string, chunkSize int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	var current []string
	size := 0

	for _, line := range strings.Split(text, "\n") {
		lineSize := len([]rune(line))
		if size+lineSize > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = []string{line}
			size = lineSize
			continue
		}
		current = append(current, line)
		size += lineSize
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
