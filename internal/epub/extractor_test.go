package epub

import (
	"strings"
	"testing"
)

func TestBuildChapterTitleFromHeading(t *testing.T) {
	e := NewExtractor(false)

	html := `<html><body><h1>The Beginning</h1><p>It was a dark and stormy night.</p></body></html>`
	chapter, ok := e.buildChapter(html, 0)
	if !ok {
		t.Fatal("expected chapter, got drop")
	}

	if chapter.Title != "The Beginning" {
		t.Errorf("Title = %q, want %q", chapter.Title, "The Beginning")
	}
	if chapter.Order != 0 {
		t.Errorf("Order = %d, want 0", chapter.Order)
	}
	if !strings.Contains(chapter.Content, "dark and stormy night") {
		t.Errorf("Content missing body text: %q", chapter.Content)
	}
	if chapter.WordCount == 0 {
		t.Error("WordCount = 0, want > 0")
	}
}

func TestBuildChapterSynthesizedTitle(t *testing.T) {
	e := NewExtractor(false)

	html := `<html><body><p>No heading in this section at all.</p></body></html>`
	chapter, ok := e.buildChapter(html, 4)
	if !ok {
		t.Fatal("expected chapter, got drop")
	}
	if chapter.Title != "Chapter 5" {
		t.Errorf("Title = %q, want %q", chapter.Title, "Chapter 5")
	}
}

func TestBuildChapterNestedHeadingMarkup(t *testing.T) {
	e := NewExtractor(false)

	html := `<h2 class="ct"><span>Part</span> <em>Two</em></h2><p>Body text follows here.</p>`
	chapter, ok := e.buildChapter(html, 1)
	if !ok {
		t.Fatal("expected chapter, got drop")
	}
	if chapter.Title != "Part Two" {
		t.Errorf("Title = %q, want %q", chapter.Title, "Part Two")
	}
}

func TestBuildChapterDropsEmptySections(t *testing.T) {
	e := NewExtractor(false)

	tests := []struct {
		name string
		html string
	}{
		{"blank body", `<html><body>   </body></html>`},
		{"markup only", `<html><body><div></div></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := e.buildChapter(tt.html, 0); ok {
				t.Error("empty section was not dropped")
			}
		})
	}
}

func TestBuildChapterAggressiveNormalization(t *testing.T) {
	e := NewExtractor(true)

	html := `<p>Dr. Smith met Mrs. Jones.</p>`
	chapter, ok := e.buildChapter(html, 0)
	if !ok {
		t.Fatal("expected chapter, got drop")
	}
	if !strings.Contains(chapter.Content, "Doctor Smith met Missus Jones") {
		t.Errorf("aggressive normalization not applied: %q", chapter.Content)
	}
}

func TestExtractTitleFallsBackOnEmptyHeading(t *testing.T) {
	if got := extractTitle(`<h1>  </h1><p>x</p>`, 2); got != "Chapter 3" {
		t.Errorf("extractTitle = %q, want %q", got, "Chapter 3")
	}
}
