package ingest

import (
	"strings"
	"testing"
)

func TestChunkGroupsSentences(t *testing.T) {
	c := NewSentenceChunker(2, 0)
	chunks := c.Chunk("doc.txt", "One. Two! Three? Four.")
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0].Text != "One. Two!" {
		t.Errorf("chunk 0 = %q", chunks[0].Text)
	}
	if chunks[1].Text != "Three? Four." {
		t.Errorf("chunk 1 = %q", chunks[1].Text)
	}
	for _, ch := range chunks {
		if ch.Source != "doc.txt" {
			t.Errorf("source = %q", ch.Source)
		}
	}
}

func TestChunkOverlap(t *testing.T) {
	c := NewSentenceChunker(3, 1)
	chunks := c.Chunk("doc.txt", "A. B. C. D. E.")
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want at least 2", len(chunks))
	}
	// The last sentence of each chunk reappears at the start of the next.
	if !strings.HasPrefix(chunks[1].Text, "C.") {
		t.Errorf("chunk 1 = %q, want overlap starting at C.", chunks[1].Text)
	}
}

func TestChunkNoPunctuation(t *testing.T) {
	c := NewSentenceChunker(5, 1)
	chunks := c.Chunk("doc.txt", "no sentence punctuation here")
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
}

func TestChunkEmpty(t *testing.T) {
	c := NewSentenceChunker(5, 1)
	if chunks := c.Chunk("doc.txt", "   \n  "); chunks != nil {
		t.Errorf("chunks = %v, want nil", chunks)
	}
}
