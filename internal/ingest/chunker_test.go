package ingest

import (
	"strings"
	"testing"
)

func TestChunkTextSplitsOnSize(t *testing.T) {
	para := strings.Repeat("The court examined the contested clause in detail. ", 3)
	text := strings.Join([]string{para, para, para, para}, "\n")

	chunks := ChunkText(text, 200, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestChunkTextOverlapCarriesTail(t *testing.T) {
	para1 := "First paragraph about the penalty terms of the agreement text."
	para2 := "Second paragraph about the delivery schedule and interest rates."
	text := para1 + "\n" + para2

	chunks := ChunkText(text, len(para1), 20)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	tail := para1[len(para1)-20:]
	if !strings.Contains(chunks[1], strings.TrimSpace(tail)) {
		t.Errorf("second chunk should carry the previous tail %q, got %q", tail, chunks[1])
	}
}

func TestChunkTextFiltersShortLines(t *testing.T) {
	text := "Page 3\n---\nThe arbitration clause requires disputes to be settled in Mumbai courts."

	chunks := ChunkText(text, 800, 150)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if strings.Contains(chunks[0], "Page 3") {
		t.Error("short noise lines should be filtered out")
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	if chunks := ChunkText("", 800, 150); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := ChunkText("short line", 800, 150); len(chunks) != 0 {
		t.Errorf("expected no chunks when every line is below the minimum, got %d", len(chunks))
	}
}

func TestChunkTextDefaults(t *testing.T) {
	text := "A paragraph that is comfortably longer than the minimum length filter."

	// Nonsensical size and overlap fall back to defaults instead of panicking.
	chunks := ChunkText(text, 0, -5)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}
