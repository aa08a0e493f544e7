package encode

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
)

// oggencEncoder drives oggenc from vorbis-tools. The normalized quality
// maps onto oggenc's -q scale of 0-10.
type oggencEncoder struct{}

func (e *oggencEncoder) Name() string    { return "oggenc" }
func (e *oggencEncoder) Available() bool { return binaryAvailable("oggenc") }

func (e *oggencEncoder) Encode(ctx context.Context, src, dst string, quality float64) error {
	return run(ctx, "oggenc",
		"-q", strconv.Itoa(int(quality*10)),
		"-o", dst,
		src,
	)
}

// flacEncoder drives the reference flac tool. FLAC is lossless, so quality
// does not apply; the maximum compression level is used unconditionally.
type flacEncoder struct{}

func (e *flacEncoder) Name() string    { return "flac" }
func (e *flacEncoder) Available() bool { return binaryAvailable("flac") }

func (e *flacEncoder) Encode(ctx context.Context, src, dst string, _ float64) error {
	return run(ctx, "flac",
		"--compression-level-8",
		"-f",
		"-o", dst,
		src,
	)
}

// lameEncoder drives the LAME MP3 encoder. LAME's -V scale is inverted
// (0 best, 9 worst), so quality 1.0 maps to -V 0 and 0.0 to -V 9.
type lameEncoder struct{}

func (e *lameEncoder) Name() string    { return "lame" }
func (e *lameEncoder) Available() bool { return binaryAvailable("lame") }

func (e *lameEncoder) Encode(ctx context.Context, src, dst string, quality float64) error {
	return run(ctx, "lame",
		"-V", strconv.Itoa(int(9-quality*9)),
		src,
		dst,
	)
}

// ffmpegEncoder is the universal fallback, selecting a codec per format.
// Quality maps as for the dedicated tools: -q:a 0-10 for vorbis, the
// inverted 9-0 scale for libmp3lame, fixed compression level for flac.
type ffmpegEncoder struct {
	format Format
}

func (e *ffmpegEncoder) Name() string    { return "ffmpeg" }
func (e *ffmpegEncoder) Available() bool { return binaryAvailable("ffmpeg") }

func (e *ffmpegEncoder) Encode(ctx context.Context, src, dst string, quality float64) error {
	args := []string{"-i", src}
	switch e.format {
	case FormatVorbis:
		args = append(args, "-c:a", "libvorbis", "-q:a", strconv.Itoa(int(quality*10)))
	case FormatFlac:
		args = append(args, "-c:a", "flac", "-compression_level", "8")
	case FormatMP3:
		args = append(args, "-c:a", "libmp3lame", "-q:a", strconv.Itoa(int(9-quality*9)))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, e.format)
	}
	args = append(args, "-y", dst)
	return run(ctx, "ffmpeg", args...)
}

// wavCopyEncoder handles the wav target: the cached waveform already is
// WAV, so encoding is a byte copy.
type wavCopyEncoder struct{}

func (e *wavCopyEncoder) Name() string    { return "copy" }
func (e *wavCopyEncoder) Available() bool { return true }

func (e *wavCopyEncoder) Encode(_ context.Context, src, dst string, _ float64) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening waveform: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying waveform: %w", err)
	}
	return out.Close()
}
