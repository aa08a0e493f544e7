package textproc

import (
	"strings"
	"testing"
)

func TestSplitSentenceOrderPreserved(t *testing.T) {
	text := "First sentence here. Second one follows! Third asks a question? Fourth closes."

	chunks := Split(text, 40)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for small limit, got %d", len(chunks))
	}

	// Concatenating chunks in order must reproduce the sentence content
	// with boundaries collapsed to single spaces.
	joined := strings.Join(chunks, " ")
	if joined != text {
		t.Errorf("reconstruction mismatch:\n got  %q\n want %q", joined, text)
	}
}

func TestSplitGreedyPacking(t *testing.T) {
	text := "Aaa bbb. Ccc ddd. Eee fff."

	// All three sentences fit into one 100-byte chunk.
	chunks := Split(text, 100)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q, want %q", chunks[0], text)
	}

	// A limit of 12 bytes fits exactly one "Xxx yyy." sentence per chunk.
	chunks = Split(text, 12)
	expected := []string{"Aaa bbb.", "Ccc ddd.", "Eee fff."}
	if len(chunks) != len(expected) {
		t.Fatalf("expected %d chunks, got %d: %v", len(expected), len(chunks), chunks)
	}
	for i, want := range expected {
		if chunks[i] != want {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want)
		}
	}
}

func TestSplitOversizeSentenceEmittedWhole(t *testing.T) {
	long := "This single sentence is far longer than the configured chunk limit and must never be truncated."

	chunks := Split(long, 10)
	if len(chunks) != 1 {
		t.Fatalf("expected oversize sentence as one chunk, got %d", len(chunks))
	}
	if chunks[0] != long {
		t.Errorf("oversize sentence was altered: %q", chunks[0])
	}
}

func TestSplitNoEmptySegments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace only", "   \n\t  "},
		{"trailing whitespace", "One sentence here.   "},
		{"double spaced boundaries", "One.  Two.   Three."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, chunk := range Split(tt.input, 5) {
				if strings.TrimSpace(chunk) == "" {
					t.Errorf("empty chunk emitted for %q", tt.input)
				}
			}
		})
	}
}

func TestSplitKeepsTerminalPunctuation(t *testing.T) {
	chunks := Split("Really?! Yes... Good.", 8)
	expected := []string{"Really?!", "Yes...", "Good."}
	if len(chunks) != len(expected) {
		t.Fatalf("got %d chunks: %v", len(chunks), chunks)
	}
	for i, want := range expected {
		if chunks[i] != want {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want)
		}
	}
}
