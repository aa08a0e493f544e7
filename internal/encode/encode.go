// Package encode converts cached waveforms into the target audio container
// by orchestrating external encoder tools. Each format carries a ranked
// candidate list; the first encoder found on the execution path is used for
// the whole run.
package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Common errors for the encoding subsystem.
var (
	// ErrNoEncoder indicates that no encoder for the requested format is
	// installed. This is fatal for a conversion run.
	ErrNoEncoder = errors.New("no encoder found for requested format")

	// ErrUnknownFormat indicates an unrecognized format name.
	ErrUnknownFormat = errors.New("unknown audio format")
)

// Format is a target audio container/codec.
type Format string

// Recognized output formats.
const (
	FormatVorbis Format = "vorbis"
	FormatFlac   Format = "flac"
	FormatMP3    Format = "mp3"
	FormatWav    Format = "wav"
)

// ParseFormat maps a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatVorbis:
		return FormatVorbis, nil
	case FormatFlac:
		return FormatFlac, nil
	case FormatMP3:
		return FormatMP3, nil
	case FormatWav:
		return FormatWav, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatVorbis:
		return "ogg"
	case FormatFlac:
		return "flac"
	case FormatMP3:
		return "mp3"
	default:
		return "wav"
	}
}

// Encoder is one external encoding tool for a particular format.
type Encoder interface {
	// Name returns the encoder's binary name, e.g. "oggenc".
	Name() string

	// Available reports whether the encoder can be invoked.
	Available() bool

	// Encode converts the waveform at src into dst. Quality is the
	// normalized 0.0-1.0 setting; each encoder maps it into its native
	// scale. A non-zero subprocess exit is returned as an error.
	Encode(ctx context.Context, src, dst string, quality float64) error
}

// Candidates returns the ranked encoder list for a format, preferred first.
func Candidates(format Format) []Encoder {
	switch format {
	case FormatVorbis:
		return []Encoder{&oggencEncoder{}, &ffmpegEncoder{format: FormatVorbis}}
	case FormatFlac:
		return []Encoder{&flacEncoder{}, &ffmpegEncoder{format: FormatFlac}}
	case FormatMP3:
		return []Encoder{&lameEncoder{}, &ffmpegEncoder{format: FormatMP3}}
	case FormatWav:
		// Identity case: a byte copy, no external tool involved.
		return []Encoder{&wavCopyEncoder{}}
	}
	return nil
}

// Resolve selects the first available encoder for the format. Selection
// happens once per run.
func Resolve(format Format) (Encoder, error) {
	for _, enc := range Candidates(format) {
		if enc.Available() {
			log.Debug("encoder selected", "format", format, "encoder", enc.Name())
			return enc, nil
		}
		log.Debug("encoder not available", "format", format, "encoder", enc.Name())
	}
	return nil, fmt.Errorf("%w: %s", ErrNoEncoder, format)
}

// encodeTimeout bounds a single encoding subprocess.
const encodeTimeout = 2 * time.Minute

// run executes an encoder binary, surfacing its combined output on failure.
func run(ctx context.Context, name string, args ...string) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, encodeTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out", name)
		}
		if msg := strings.TrimSpace(output.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// binaryAvailable reports whether name resolves on the execution path.
func binaryAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
