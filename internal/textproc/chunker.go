package textproc

import (
	"regexp"
	"strings"
)

// sentenceEndRe marks a sentence boundary: terminal punctuation followed by
// whitespace. The punctuation stays with the sentence it ends.
var sentenceEndRe = regexp.MustCompile(`[.!?]+\s+`)

// Split divides normalized text into segments of at most maxChunkSize bytes,
// packing whole sentences greedily. A single sentence longer than the limit
// is emitted whole rather than truncated; the limit is a soft target. Output
// segments are never empty and preserve source order: joining them with
// single spaces reproduces the sentence content of the input.
func Split(text string, maxChunkSize int) []string {
	sentences := splitSentences(text)

	var chunks []string
	var cur strings.Builder
	for _, sentence := range sentences {
		if cur.Len() > 0 && cur.Len()+1+len(sentence) > maxChunkSize {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(sentence)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}

	return chunks
}

// splitSentences slices text at sentence boundaries, keeping the terminal
// punctuation and dropping the inter-sentence whitespace.
func splitSentences(text string) []string {
	var sentences []string
	prev := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[prev:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
