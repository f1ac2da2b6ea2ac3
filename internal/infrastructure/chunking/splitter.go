package chunking

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Splitter splits normalized text into overlapping chunks bounded by
// sentence boundaries. MaxSize caps chunk length in characters except when
// a single sentence alone exceeds it; Overlap is the character budget for
// whole trailing sentences carried into the next chunk.
type Splitter struct {
	MaxSize int
	Overlap int
}

func NewSplitter(maxSize, overlap int) *Splitter {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}
	return &Splitter{
		MaxSize: maxSize,
		Overlap: overlap,
	}
}

// Chunk greedily packs sentences into chunks. Each sentence is consumed
// exactly once; overlap carry-over re-adds already-seen sentences as content
// but never re-splits the source. Empty or whitespace-only input yields no
// chunks.
func (s *Splitter) Chunk(text string) []string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		n := utf8.RuneCountInString(sentence)
		// Length accounting includes the single joining space so a closed
		// chunk's text never exceeds MaxSize unless one sentence alone does.
		if len(current) > 0 && currentLen+1+n > s.MaxSize {
			chunks = append(chunks, strings.Join(current, " "))
			current, currentLen = s.overlapTail(current)
		}
		if len(current) > 0 {
			currentLen++
		}
		current = append(current, sentence)
		currentLen += n
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// overlapTail walks backward through a just-closed chunk, collecting whole
// sentences in original order until the budget would be exceeded. At least
// the most recent sentence is always kept, even if it alone exceeds the
// budget.
func (s *Splitter) overlapTail(closed []string) ([]string, int) {
	var tail []string
	length := 0
	for i := len(closed) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(closed[i])
		if len(tail) > 0 {
			n++ // joining space
		}
		if length+n > s.Overlap && len(tail) > 0 {
			break
		}
		tail = append([]string{closed[i]}, tail...)
		length += n
	}
	return tail, length
}

// SplitSentences splits text at terminal punctuation (. ! ?) followed by
// whitespace. A trailing run without terminal punctuation is still a valid
// final sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		if isTerminal(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
