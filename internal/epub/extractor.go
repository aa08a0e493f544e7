// Package epub extracts an ordered sequence of titled chapters from an EPUB
// document, following the container's spine (the defined reading order).
package epub

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/taylorskalyo/goreader/epub"
	"jaytaylor.com/html2text"

	"github.com/voxbook/voxbook/internal/textproc"
)

// ErrNoChapters indicates that the document yielded no readable text at
// all. This is fatal for a conversion run.
var ErrNoChapters = errors.New("document contains no readable chapters")

// Chapter is one spine section with cleaned text. Immutable after
// extraction.
type Chapter struct {
	// Title is the first heading of the section, or a synthesized
	// "Chapter N" label.
	Title string

	// Content is the normalized plain text.
	Content string

	// Order is the section's spine position.
	Order int

	// WordCount is the number of words in Content.
	WordCount int
}

// headingRe captures the first h1-h3 heading of a section.
var headingRe = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)

// tagRe strips residual markup from extracted heading text.
var tagRe = regexp.MustCompile(`<[^>]+>`)

// Extractor turns an EPUB file into chapters, running every section's text
// through the normalizer.
type Extractor struct {
	norm       *textproc.Normalizer
	aggressive bool
}

// NewExtractor creates an extractor. The aggressive flag is passed through
// to text normalization.
func NewExtractor(aggressive bool) *Extractor {
	return &Extractor{norm: textproc.NewNormalizer(), aggressive: aggressive}
}

// Extract parses the EPUB at path and returns its chapters in reading
// order. Sections whose cleaned text is empty are dropped rather than
// emitted as empty chapters; chapter orders keep their spine positions.
func (e *Extractor) Extract(path string) ([]Chapter, error) {
	rc, err := epub.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, ErrNoChapters
	}
	book := rc.Rootfiles[0]

	var chapters []Chapter
	for order, itemref := range book.Spine.Itemrefs {
		if itemref.Item == nil {
			log.Warn("spine entry without manifest item", "idref", itemref.IDREF)
			continue
		}

		f, err := itemref.Open()
		if err != nil {
			log.Warn("unreadable spine section", "idref", itemref.IDREF, "err", err)
			continue
		}
		raw, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Warn("unreadable spine section", "idref", itemref.IDREF, "err", err)
			continue
		}

		chapter, ok := e.buildChapter(string(raw), order)
		if !ok {
			log.Debug("dropping empty section", "order", order)
			continue
		}
		chapters = append(chapters, chapter)
	}

	if len(chapters) == 0 {
		return nil, ErrNoChapters
	}

	log.Info("chapters extracted", "count", len(chapters))
	return chapters, nil
}

// buildChapter converts one section's HTML into a Chapter. Returns false
// when the section has no speakable content.
func (e *Extractor) buildChapter(html string, order int) (Chapter, bool) {
	text, err := html2text.FromString(html, html2text.Options{TextOnly: true})
	if err != nil {
		log.Warn("html conversion failed", "order", order, "err", err)
		return Chapter{}, false
	}

	content := e.norm.Normalize(text, e.aggressive)
	if content == "" {
		return Chapter{}, false
	}

	return Chapter{
		Title:     extractTitle(html, order),
		Content:   content,
		Order:     order,
		WordCount: textproc.WordCount(content),
	}, true
}

// extractTitle pulls the first h1-h3 heading from the section markup,
// falling back to a synthesized label.
func extractTitle(html string, order int) string {
	if m := headingRe.FindStringSubmatch(html); m != nil {
		title := tagRe.ReplaceAllString(m[1], "")
		title = strings.Join(strings.Fields(title), " ")
		if title != "" {
			return title
		}
	}
	return fmt.Sprintf("Chapter %d", order+1)
}
