package extract

import (
	"strings"
	"testing"
)

func TestSplitLines_UnderBudget(t *testing.T) {
	chunks := SplitLines("line one\nline two", 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "line one\nline two" {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitLines_NeverSplitsALine(t *testing.T) {
	lines := []string{
		strings.Repeat("a", 30),
		strings.Repeat("b", 30),
		strings.Repeat("c", 30),
	}
	chunks := SplitLines(strings.Join(lines, "\n"), 50)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if strings.Contains(c, "\n") {
			t.Errorf("chunk %d spans lines: %q", i, c)
		}
	}
}

func TestSplitLines_PacksWholeLines(t *testing.T) {
	lines := []string{
		strings.Repeat("a", 20),
		strings.Repeat("b", 20),
		strings.Repeat("c", 20),
	}
	chunks := SplitLines(strings.Join(lines, "\n"), 45)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "a") || !strings.Contains(chunks[0], "b") {
		t.Errorf("chunk 0 = %q", chunks[0])
	}
	if !strings.Contains(chunks[1], "c") {
		t.Errorf("chunk 1 = %q", chunks[1])
	}
}

func TestSplitLines_OversizedLineIsOwnChunk(t *testing.T) {
	long := strings.Repeat("x", 200)
	chunks := SplitLines("short\n"+long, 50)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1] != long {
		t.Errorf("oversized line was split")
	}
}

func TestSplitLines_Empty(t *testing.T) {
	if chunks := SplitLines("   ", 50); chunks != nil {
		t.Errorf("expected nil, got %v", chunks)
	}
}
