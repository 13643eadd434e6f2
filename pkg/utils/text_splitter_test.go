package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short note", 100, 20)
	if len(chunks) != 1 || chunks[0] != "short note" {
		t.Fatalf("got %v, want the input unchanged", chunks)
	}
}

func TestSplitTextOverlapsChunks(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-10:]
		if !strings.HasPrefix(chunks[i+1], tail) {
			t.Errorf("chunk %d does not begin with the previous chunk's overlap", i+1)
		}
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := SplitText(text, 10, 20)

	// degenerate overlap falls back to non-overlapping steps
	if len(chunks) != 5 {
		t.Fatalf("got %d chunks, want 5", len(chunks))
	}
}
