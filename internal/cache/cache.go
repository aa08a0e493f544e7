// Package cache is a content-addressed store for rendered waveforms. Files
// are keyed by hex digest and written once; the same text rendered by the
// same engine with the same voice parameters reuses the file across runs
// instead of paying for synthesis again.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Store maps cache keys to waveform files in a single shared directory.
// Concurrent use needs no locking: two workers missing on the same key both
// synthesize, and the atomic rename on write makes the duplicate a
// last-writer-wins over identical content rather than a corruption.
type Store struct {
	dir     string
	enabled bool
}

// NewStore opens (creating if needed) the cache directory. With enabled set
// to false the directory is never touched and every GetOrCreate call is a
// miss that writes to an ephemeral location.
func NewStore(dir string, enabled bool) (*Store, error) {
	if enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return &Store{dir: dir, enabled: enabled}, nil
}

// Enabled reports whether the store persists entries.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Dir returns the cache directory path.
func (s *Store) Dir() string {
	return s.dir
}

// GetOrCreate returns the path of the waveform for key, invoking gen to
// produce it on a miss. The returned ephemeral flag is true when the file
// lives outside the cache and the caller is responsible for deleting it
// after use. When gen fails, no cache entry is created and the error is
// returned as-is.
func (s *Store) GetOrCreate(key string, gen func() ([]byte, error)) (path string, ephemeral bool, err error) {
	if !s.enabled {
		audio, err := gen()
		if err != nil {
			return "", false, err
		}
		tmp, err := os.CreateTemp("", "voxbook-*.wav")
		if err != nil {
			return "", false, fmt.Errorf("creating temp waveform: %w", err)
		}
		if _, err := tmp.Write(audio); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", false, fmt.Errorf("writing temp waveform: %w", err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return "", false, fmt.Errorf("closing temp waveform: %w", err)
		}
		return tmp.Name(), true, nil
	}

	entry := filepath.Join(s.dir, key+".wav")
	if _, err := os.Stat(entry); err == nil {
		log.Debug("cache hit", "key", key)
		return entry, false, nil
	}

	audio, err := gen()
	if err != nil {
		return "", false, err
	}

	if err := s.writeAtomic(entry, audio); err != nil {
		return "", false, err
	}
	log.Debug("cache write", "key", key, "bytes", len(audio))
	return entry, false, nil
}

// writeAtomic writes data next to dst and renames it into place, so a
// concurrent reader never observes a partial file.
func (s *Store) writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".voxbook-*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}
