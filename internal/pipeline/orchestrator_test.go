package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxbook/voxbook/internal/encode"
	"github.com/voxbook/voxbook/internal/epub"
	"github.com/voxbook/voxbook/internal/speech"
)

// stubExtractor feeds canned chapters into the pipeline.
type stubExtractor struct {
	chapters []epub.Chapter
	err      error
}

func (s stubExtractor) Extract(string) ([]epub.Chapter, error) {
	return s.chapters, s.err
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Format = "wav"
	cfg.Workers = 2
	cfg.ChunkSize = 10
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

// twoChunkContent splits into exactly two chunks at ChunkSize 10.
const twoChunkContent = "Aaa bbb. Ccc ddd."

func threeChapters() []epub.Chapter {
	return []epub.Chapter{
		{Title: "Alpha", Content: twoChunkContent, Order: 0, WordCount: 4},
		{Title: "Beta", Content: twoChunkContent, Order: 1, WordCount: 4},
		{Title: "Gamma", Content: twoChunkContent, Order: 2, WordCount: 4},
	}
}

func newTestPipeline(cfg Config, chapters []epub.Chapter, engine speech.Engine) *Pipeline {
	p := New(cfg)
	p.Engines = []speech.Engine{engine}
	p.Encoder = encode.NewMockEncoder()
	p.Extractor = stubExtractor{chapters: chapters}
	return p
}

func TestRunProducesOrderedPlaylist(t *testing.T) {
	cfg := testConfig(t)
	outDir := filepath.Join(t.TempDir(), "out")

	p := newTestPipeline(cfg, threeChapters(), speech.NewMockEngine())
	result, err := p.Run(context.Background(), "book.epub", outDir)
	require.NoError(t, err)
	require.Equal(t, 3, result.Chapters)
	assert.Empty(t, result.Warnings)

	data, err := os.ReadFile(result.PlaylistPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "#EXTM3U", lines[0])

	entries := lines[1:]
	expected := []string{
		"000_Alpha/000_Alpha.wav",
		"000_Alpha/001_Alpha.wav",
		"001_Beta/000_Beta.wav",
		"001_Beta/001_Beta.wav",
		"002_Gamma/000_Gamma.wav",
		"002_Gamma/001_Gamma.wav",
	}
	assert.Equal(t, expected, entries)

	// Playlist order must hold regardless of worker completion order.
	assert.True(t, sort.StringsAreSorted(entries))

	for _, dir := range []string{"000_Alpha", "001_Beta", "002_Gamma"} {
		_, err := os.Stat(filepath.Join(outDir, dir, "metadata.json"))
		assert.NoError(t, err, "metadata for %s", dir)
	}
}

func TestRunPartialFailureStillSucceeds(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChunkSize = 1000 // one chunk per chapter
	outDir := filepath.Join(t.TempDir(), "out")

	chapters := []epub.Chapter{
		{Title: "One", Content: "Chapter one text.", Order: 0, WordCount: 3},
		{Title: "Two", Content: "Chapter two text.", Order: 1, WordCount: 3},
		{Title: "Three", Content: "Chapter three text.", Order: 2, WordCount: 3},
	}

	engine := speech.NewMockEngine()
	engine.FailFor = map[string]error{"Chapter two text.": errors.New("exit status 1")}

	p := newTestPipeline(cfg, chapters, engine)
	result, err := p.Run(context.Background(), "book.epub", outDir)

	// The run as a whole succeeds, with the failure recorded as a warning.
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "chapter 1")

	assertAudio := func(dir string, want bool) {
		t.Helper()
		files, err := os.ReadDir(filepath.Join(outDir, dir))
		require.NoError(t, err)
		found := false
		for _, f := range files {
			if strings.HasSuffix(f.Name(), ".wav") {
				found = true
			}
		}
		assert.Equal(t, want, found, "audio presence in %s", dir)
	}

	assertAudio("000_One", true)
	assertAudio("001_Two", false) // directory exists, audio missing
	assertAudio("002_Three", true)
}

func TestRunFatalWhenNoEngine(t *testing.T) {
	cfg := testConfig(t)
	outDir := filepath.Join(t.TempDir(), "out")

	engine := speech.NewMockEngine()
	engine.Unavailable = true

	p := newTestPipeline(cfg, threeChapters(), engine)
	_, err := p.Run(context.Background(), "book.epub", outDir)
	require.ErrorIs(t, err, speech.ErrNoEngine)

	// Fatal before any chapter work: nothing may have been created.
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "output directory was created despite fatal error")
	_, statErr = os.Stat(cfg.CacheDir)
	assert.True(t, os.IsNotExist(statErr), "cache directory was created despite fatal error")
}

func TestRunFatalWhenExtractionFails(t *testing.T) {
	cfg := testConfig(t)

	p := New(cfg)
	p.Engines = []speech.Engine{speech.NewMockEngine()}
	p.Encoder = encode.NewMockEncoder()
	p.Extractor = stubExtractor{err: epub.ErrNoChapters}

	_, err := p.Run(context.Background(), "book.epub", filepath.Join(t.TempDir(), "out"))
	require.ErrorIs(t, err, epub.ErrNoChapters)
}

func TestRunCacheHitSkipsSynthesis(t *testing.T) {
	cfg := testConfig(t)

	first := newTestPipeline(cfg, threeChapters(), speech.NewMockEngine())
	_, err := first.Run(context.Background(), "book.epub", filepath.Join(t.TempDir(), "out1"))
	require.NoError(t, err)

	engine := speech.NewMockEngine()
	second := newTestPipeline(cfg, threeChapters(), engine)
	_, err = second.Run(context.Background(), "book.epub", filepath.Join(t.TempDir(), "out2"))
	require.NoError(t, err)

	assert.Zero(t, engine.CallCount(), "second run must be served entirely from cache")
}

func TestRunIdempotentTree(t *testing.T) {
	listTree := func(root string) []string {
		var paths []string
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, _ := filepath.Rel(root, path)
			paths = append(paths, rel)
			return nil
		})
		require.NoError(t, err)
		sort.Strings(paths)
		return paths
	}

	runOnce := func(outDir string) {
		cfg := testConfig(t) // fresh cache dir: cache cleared between runs
		p := newTestPipeline(cfg, threeChapters(), speech.NewMockEngine())
		_, err := p.Run(context.Background(), "book.epub", outDir)
		require.NoError(t, err)
	}

	out1 := filepath.Join(t.TempDir(), "out")
	out2 := filepath.Join(t.TempDir(), "out")
	runOnce(out1)
	runOnce(out2)

	assert.Equal(t, listTree(out1), listTree(out2))
}

func TestRunEmitsTerminalEvent(t *testing.T) {
	cfg := testConfig(t)

	p := newTestPipeline(cfg, threeChapters(), speech.NewMockEngine())
	_, err := p.Run(context.Background(), "book.epub", filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	var last ProgressEvent
	seen := 0
	for ev := range p.Events() { // channel is closed after the terminal event
		last = ev
		seen++
	}
	require.NotZero(t, seen, "no progress events observed")
	assert.Equal(t, StageCompleted, last.Stage)
	assert.Equal(t, 3, last.ChaptersTotal)
}

func TestRunCancellation(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancelled before scheduling

	p := newTestPipeline(cfg, threeChapters(), speech.NewMockEngine())
	_, err := p.Run(ctx, "book.epub", filepath.Join(t.TempDir(), "out"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Plain Title", "Plain Title"},
		{`What? No: "Really"/Maybe`, "What_ No_ _Really__Maybe"},
		{`a\b|c*d`, "a_b_c_d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeTitle(tt.input))
	}
}
