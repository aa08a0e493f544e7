// Package pipeline drives the conversion of an e-book into audio: chapter
// extraction, chunking, cached synthesis, encoding, and playlist assembly,
// with chapters processed in parallel and chunks in strict order.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voxbook/voxbook/internal/cache"
	"github.com/voxbook/voxbook/internal/encode"
	"github.com/voxbook/voxbook/internal/epub"
	"github.com/voxbook/voxbook/internal/speech"
	"github.com/voxbook/voxbook/internal/textproc"
)

// eventBuffer is the progress channel capacity. Producers never block;
// events beyond this are dropped.
const eventBuffer = 64

// invalidFilenameRe matches characters that cannot appear in filenames on
// common filesystems.
var invalidFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]`)

// Extractor yields the ordered chapter sequence for a document. Satisfied
// by epub.Extractor; tests substitute their own.
type Extractor interface {
	Extract(path string) ([]epub.Chapter, error)
}

// Result summarizes a finished run.
type Result struct {
	// OutputDir is the root of the produced tree.
	OutputDir string

	// PlaylistPath is the written M3U playlist.
	PlaylistPath string

	// Chapters is the number of chapters processed.
	Chapters int

	// Warnings lists segment-level failures that did not abort the run.
	// A non-empty list still means overall success.
	Warnings []string

	// Elapsed is the wall-clock run duration.
	Elapsed time.Duration
}

// Pipeline converts one document per Run call. Engines, Encoder, and
// Extractor default to the real implementations when left nil.
type Pipeline struct {
	cfg Config

	// Engines is the ranked engine list to resolve from.
	Engines []speech.Engine

	// Encoder overrides format-based encoder resolution.
	Encoder encode.Encoder

	// Extractor overrides the EPUB chapter extractor.
	Extractor Extractor

	reporter *progressReporter
}

// New creates a pipeline for one run with the given configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		reporter: newProgressReporter(eventBuffer),
	}
}

// Events returns the progress stream. Intermediate events are best-effort;
// the channel is closed once the run reaches a terminal state, after Run
// has produced its authoritative result.
func (p *Pipeline) Events() <-chan ProgressEvent {
	return p.reporter.events()
}

// Run executes the full conversion. Fatal conditions (no engine, no
// encoder, unparseable document, unwritable directories) abort before any
// chapter work; segment-level failures are collected into Result.Warnings.
// Run may be called at most once per Pipeline.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputDir string) (result *Result, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			p.reporter.stage(StageFailed, err.Error())
		}
		p.reporter.close()
	}()

	// Resolve external tools before touching the filesystem, so a missing
	// engine or encoder aborts with nothing created.
	engines := p.Engines
	if engines == nil {
		engines = speech.DefaultEngines()
	}
	synth, err := speech.NewSynthesizer(p.cfg.VoiceParams(), engines)
	if err != nil {
		return nil, err
	}

	format, err := encode.ParseFormat(p.cfg.Format)
	if err != nil {
		return nil, err
	}
	encoder := p.Encoder
	if encoder == nil {
		if encoder, err = encode.Resolve(format); err != nil {
			return nil, err
		}
	}

	log.Info("starting conversion",
		"input", inputPath,
		"engine", synth.EngineName(),
		"encoder", encoder.Name(),
		"format", format,
		"workers", p.cfg.Workers,
	)

	store, err := cache.NewStore(p.cfg.CacheDir, p.cfg.CacheEnabled)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	p.reporter.stage(StageExtracting, "extracting chapters")
	extractor := p.Extractor
	if extractor == nil {
		extractor = epub.NewExtractor(p.cfg.AggressiveCleanup)
	}
	chapters, err := extractor.Extract(inputPath)
	if err != nil {
		return nil, err
	}
	p.reporter.setTotal(len(chapters))

	totalWords := 0
	for _, c := range chapters {
		totalWords += c.WordCount
	}
	log.Info("chapters ready", "chapters", len(chapters), "words", totalWords)

	p.reporter.stage(StageSynthesizing, "synthesizing chapters")
	warnings, err := p.processChapters(ctx, chapters, synth, encoder, format, store, outputDir)
	if err != nil {
		return nil, err
	}

	p.reporter.stage(StageWriting, "writing playlist")
	playlistPath, err := writePlaylist(outputDir, format)
	if err != nil {
		return nil, err
	}

	result = &Result{
		OutputDir:    outputDir,
		PlaylistPath: playlistPath,
		Chapters:     len(chapters),
		Warnings:     warnings,
		Elapsed:      time.Since(start),
	}
	p.reporter.stage(StageCompleted, "conversion complete")
	log.Info("conversion complete",
		"chapters", result.Chapters,
		"warnings", len(result.Warnings),
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// processChapters fans chapters out to a fixed worker pool. Each chapter is
// owned by exactly one worker, which walks its chunks in order; chapter
// completion order is unconstrained.
func (p *Pipeline) processChapters(
	ctx context.Context,
	chapters []epub.Chapter,
	synth *speech.Synthesizer,
	encoder encode.Encoder,
	format encode.Format,
	store *cache.Store,
	outputDir string,
) ([]string, error) {
	jobs := make(chan epub.Chapter)

	var mu sync.Mutex
	var warnings []string
	var fatal error

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chapter := range jobs {
				chapterWarnings, err := p.processChapter(ctx, chapter, synth, encoder, format, store, outputDir)
				mu.Lock()
				warnings = append(warnings, chapterWarnings...)
				if err != nil && fatal == nil {
					fatal = err
				}
				mu.Unlock()
				p.reporter.chapterDone(chapter.Title)
			}
		}()
	}

	// Stop scheduling new chapters once the context is done; in-flight
	// chapters finish on their own.
feed:
	for _, chapter := range chapters {
		select {
		case jobs <- chapter:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return warnings, err
	}
	return warnings, fatal
}

// processChapter renders one chapter into its directory: numbered audio
// segments in strict chunk order, then the chapter metadata file. Returned
// warnings are segment-level failures; the error return is reserved for
// fatal I/O.
func (p *Pipeline) processChapter(
	ctx context.Context,
	chapter epub.Chapter,
	synth *speech.Synthesizer,
	encoder encode.Encoder,
	format encode.Format,
	store *cache.Store,
	outputDir string,
) ([]string, error) {
	safeTitle := sanitizeTitle(chapter.Title)
	chapterDir := filepath.Join(outputDir, fmt.Sprintf("%03d_%s", chapter.Order, safeTitle))
	if err := os.MkdirAll(chapterDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chapter directory: %w", err)
	}

	chunks := textproc.Split(chapter.Content, p.cfg.ChunkSize)

	var warnings []string
	for idx, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return warnings, err
		}

		key := cache.Key(chunk, synth.Params(), synth.EngineName())
		wavPath, ephemeral, err := store.GetOrCreate(key, func() ([]byte, error) {
			return synth.Synthesize(ctx, chunk)
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("chapter %d chunk %d: %v", chapter.Order, idx, err))
			log.Warn("segment synthesis failed", "chapter", chapter.Order, "chunk", idx, "err", err)
			continue
		}

		dst := filepath.Join(chapterDir, fmt.Sprintf("%03d_%s.%s", idx, safeTitle, format.Ext()))
		err = encoder.Encode(ctx, wavPath, dst, p.cfg.Quality)
		if ephemeral {
			os.Remove(wavPath)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("chapter %d chunk %d: %v", chapter.Order, idx, err))
			log.Warn("segment encoding failed", "chapter", chapter.Order, "chunk", idx, "err", err)
			continue
		}
	}

	if err := p.writeMetadata(chapterDir, chapter, len(chunks)); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// chapterMetadata is the per-chapter manifest written next to the audio.
type chapterMetadata struct {
	Title      string `json:"title"`
	Order      int    `json:"order"`
	WordCount  int    `json:"word_count"`
	ChunkCount int    `json:"chunk_count"`
	Config     Config `json:"config"`
}

func (p *Pipeline) writeMetadata(chapterDir string, chapter epub.Chapter, chunkCount int) error {
	meta := chapterMetadata{
		Title:      chapter.Title,
		Order:      chapter.Order,
		WordCount:  chapter.WordCount,
		ChunkCount: chunkCount,
		Config:     p.cfg,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(chapterDir, "metadata.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// sanitizeTitle replaces filesystem-hostile characters in a chapter title.
func sanitizeTitle(title string) string {
	return invalidFilenameRe.ReplaceAllString(title, "_")
}
