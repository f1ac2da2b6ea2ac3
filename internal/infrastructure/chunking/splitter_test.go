package chunking

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("One. Two! Three? Four")
	want := []string{"One.", "Two!", "Three?", "Four"}
	if len(got) != len(want) {
		t.Fatalf("SplitSentences() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSentencesNoTerminalPunctuation(t *testing.T) {
	got := SplitSentences("just a fragment with no period")
	if len(got) != 1 || got[0] != "just a fragment with no period" {
		t.Fatalf("SplitSentences() = %v", got)
	}
}

func TestSplitSentencesDotWithoutWhitespaceIsNotBoundary(t *testing.T) {
	got := SplitSentences("version 1.2 shipped. done")
	if len(got) != 2 {
		t.Fatalf("SplitSentences() = %v, want 2 sentences", got)
	}
	if got[0] != "version 1.2 shipped." {
		t.Fatalf("first sentence = %q", got[0])
	}
}

func TestSplitSentencesEmpty(t *testing.T) {
	if got := SplitSentences(""); got != nil {
		t.Fatalf("SplitSentences(\"\") = %v, want nil", got)
	}
	if got := SplitSentences("  \n "); got != nil {
		t.Fatalf("SplitSentences(whitespace) = %v, want nil", got)
	}
}

func TestChunkEmptyInput(t *testing.T) {
	s := NewSplitter(1000, 200)
	if got := s.Chunk(""); len(got) != 0 {
		t.Fatalf("Chunk(\"\") = %v, want empty", got)
	}
	if got := s.Chunk(" \n\t "); len(got) != 0 {
		t.Fatalf("Chunk(whitespace) = %v, want empty", got)
	}
}

func TestChunkShortDocumentSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)
	got := s.Chunk("RAG uses retrieval plus generation. It reduces hallucination.")
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(got), got)
	}
	want := "RAG uses retrieval plus generation. It reduces hallucination."
	if got[0] != want {
		t.Fatalf("chunk = %q, want %q", got[0], want)
	}
}

// fiftySentences builds 50 sentences of exactly 50 characters each,
// 2500 characters of sentence content in total.
func fiftySentences() []string {
	out := make([]string, 0, 50)
	for i := 1; i <= 50; i++ {
		out = append(out, fmt.Sprintf("Sentence %02d %s.", i, strings.Repeat("x", 37)))
	}
	return out
}

func TestChunkLongDocumentThreeChunks(t *testing.T) {
	sentences := fiftySentences()
	s := NewSplitter(1000, 200)
	chunks := s.Chunk(strings.Join(sentences, " "))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if n := utf8.RuneCountInString(c); n > 1000 {
			t.Fatalf("chunk %d length %d exceeds max size", i, n)
		}
	}
	// Chunk 2 must open with a suffix of chunk 1's closing sentences.
	prev := SplitSentences(chunks[0])
	cur := SplitSentences(chunks[1])
	m := overlapSentenceCount(prev, cur)
	if m == 0 {
		t.Fatalf("chunk 2 does not overlap chunk 1:\nchunk1=%q\nchunk2=%q", chunks[0], chunks[1])
	}
	if !strings.HasSuffix(chunks[0], strings.Join(cur[:m], " ")) {
		t.Fatalf("chunk 2 opening %q is not a suffix of chunk 1", strings.Join(cur[:m], " "))
	}
}

func TestChunkOverlapInvariant(t *testing.T) {
	s := NewSplitter(120, 40)
	text := "Alpha one two three. Bravo four five six. Charlie seven eight. Delta nine ten eleven. Echo twelve thirteen. Foxtrot fourteen fifteen. Golf sixteen."
	chunks := s.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := SplitSentences(chunks[i-1])
		cur := SplitSentences(chunks[i])
		if overlapSentenceCount(prev, cur) == 0 {
			t.Fatalf("no overlap between chunk %d and %d:\n%q\n%q", i-1, i, chunks[i-1], chunks[i])
		}
	}
}

// overlapSentenceCount returns the largest m such that the last m sentences
// of prev equal the first m sentences of cur.
func overlapSentenceCount(prev, cur []string) int {
	max := len(prev)
	if len(cur) < max {
		max = len(cur)
	}
	for m := max; m > 0; m-- {
		match := true
		for j := 0; j < m; j++ {
			if prev[len(prev)-m+j] != cur[j] {
				match = false
				break
			}
		}
		if match {
			return m
		}
	}
	return 0
}

func TestChunkCoverage(t *testing.T) {
	sentences := fiftySentences()
	s := NewSplitter(1000, 200)
	chunks := s.Chunk(strings.Join(sentences, " "))

	// Concatenating each chunk's novel content (everything after the seeded
	// overlap) reconstructs the original sentence sequence exactly.
	var rebuilt []string
	var prev []string
	for i, c := range chunks {
		cur := SplitSentences(c)
		novel := cur
		if i > 0 {
			m := overlapSentenceCount(prev, cur)
			if m == 0 {
				t.Fatalf("chunk %d has no overlap with its predecessor", i)
			}
			novel = cur[m:]
		}
		rebuilt = append(rebuilt, novel...)
		prev = cur
	}

	if len(rebuilt) != len(sentences) {
		t.Fatalf("rebuilt %d sentences, want %d", len(rebuilt), len(sentences))
	}
	for i := range sentences {
		if rebuilt[i] != sentences[i] {
			t.Fatalf("sentence %d = %q, want %q", i, rebuilt[i], sentences[i])
		}
	}
}

func TestChunkOversizedSentenceBecomesOwnChunk(t *testing.T) {
	huge := strings.Repeat("y", 500) + "."
	text := "Short one. " + huge + " Short two."
	s := NewSplitter(100, 20)
	chunks := s.Chunk(text)

	found := false
	for _, c := range chunks {
		if strings.Contains(c, huge) {
			found = true
		}
	}
	if !found {
		t.Fatalf("oversized sentence was split or dropped: %v", chunks)
	}
}

func TestChunkOverlapKeepsAtLeastOneSentence(t *testing.T) {
	// The closing sentence alone exceeds the overlap budget; it is still
	// carried into the next chunk.
	s := NewSplitter(80, 10)
	text := "This opening sentence runs well past the overlap budget limit. And this second sentence closes out the document."
	chunks := s.Chunk(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %v", chunks)
	}
	prev := SplitSentences(chunks[0])
	cur := SplitSentences(chunks[1])
	if cur[0] != prev[len(prev)-1] {
		t.Fatalf("next chunk does not start with previous chunk's last sentence: %q vs %q", cur[0], prev[len(prev)-1])
	}
	if utf8.RuneCountInString(cur[0]) <= s.Overlap {
		t.Fatalf("test premise broken: carried sentence fits the overlap budget")
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.MaxSize != 1000 {
		t.Fatalf("default MaxSize = %d, want 1000", s.MaxSize)
	}
	if s.Overlap != 0 {
		t.Fatalf("default Overlap = %d, want 0", s.Overlap)
	}

	s = NewSplitter(100, 150)
	if s.Overlap != 25 {
		t.Fatalf("clamped Overlap = %d, want 25", s.Overlap)
	}
}
