package reconcile

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// entryHeaderMarker identifies a per-game header line when counting.
const entryHeaderMarker = "category_name,reading,word"

// csvCounts is what the CSV directory holds, by line count.
type csvCounts struct {
	dirExists  bool
	filesExist bool
	gameCount  int64
	entryCount int64
}

// scanCSV counts the CSV directory. Unreadable files count as empty.
func scanCSV(fs afero.Fs, dir string) csvCounts {
	var c csvCounts

	exists, err := afero.DirExists(fs, dir)
	if err != nil || !exists {
		return c
	}
	c.dirExists = true

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return c
	}

	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		switch name := info.Name(); {
		case name == GamesFile:
			c.filesExist = true
			c.gameCount = countManifestRows(fs, filepath.Join(dir, name))
		case IsGameFile(name):
			c.filesExist = true
			c.entryCount += countEntryRows(fs, filepath.Join(dir, name))
		}
	}
	return c
}

// countManifestRows returns the line count minus the header.
func countManifestRows(fs afero.Fs, path string) int64 {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return 0
	}
	return int64(len(strings.Split(content, "\n")) - 1)
}

// countEntryRows returns the non-empty lines that are neither the leading
// comment nor the header.
func countEntryRows(fs afero.Fs, path string) int64 {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0
	}
	var n int64
	for i, line := range strings.Split(strings.TrimPrefix(string(data), "\ufeff"), "\n") {
		if strings.TrimSpace(line) == "" || (i == 0 && strings.HasPrefix(line, "#")) || strings.Contains(line, entryHeaderMarker) {
			continue
		}
		n++
	}
	return n
}
