package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/voxbook/voxbook/internal/encode"
)

// PlaylistName is the playlist file written at the output root.
const PlaylistName = "audiobook.m3u"

// writePlaylist lists every produced audio file under outputDir in lexical
// directory/file order and writes them as a sequential M3U playlist. The
// zero-padded numeric prefixes make lexical order equal chapter/segment
// order, regardless of which worker finished first.
func writePlaylist(outputDir string, format encode.Format) (string, error) {
	ext := "." + format.Ext()

	var entries []string
	dirs, err := os.ReadDir(outputDir)
	if err != nil {
		return "", fmt.Errorf("listing output directory: %w", err)
	}
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(outputDir, dir.Name()))
		if err != nil {
			return "", fmt.Errorf("listing chapter directory: %w", err)
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ext) {
				continue
			}
			entries = append(entries, filepath.ToSlash(filepath.Join(dir.Name(), file.Name())))
		}
	}
	sort.Strings(entries)

	playlistPath := filepath.Join(outputDir, PlaylistName)
	f, err := os.Create(playlistPath)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "#EXTM3U")
	for _, entry := range entries {
		fmt.Fprintln(w, entry)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("writing playlist: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing playlist: %w", err)
	}

	return playlistPath, nil
}
