package csvsync

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"dict-manager/feature/dictionary"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrDirectoryNotFound is returned when importing from a missing directory.
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrNoEntries is returned by the dedicated vendor export for an empty game.
	ErrNoEntries = errors.New("no entries found")
	// ErrInvalidFile is returned when a per-game file lacks its required columns.
	ErrInvalidFile = errors.New("invalid csv file")
	// ErrMirrorDisabled is returned by Pull when no object storage mirror is configured.
	ErrMirrorDisabled = errors.New("object storage mirror is disabled")
)

// timeLayout is the timestamp format of the games manifest.
const timeLayout = time.RFC3339

// Codec reads and writes the dictionary as a directory of CSV files.
type Codec struct {
	store  *dictionary.Store
	fs     afero.Fs
	logger *zap.Logger
	now    func() time.Time
}

// NewCodec creates a codec over the store and filesystem.
func NewCodec(store *dictionary.Store, fs afero.Fs, logger *zap.Logger) *Codec {
	return &Codec{
		store:  store,
		fs:     fs,
		logger: logger,
		now:    time.Now,
	}
}

// ExportDirectory writes the store into dir.
func (c *Codec) ExportDirectory(ctx context.Context, dir string) error {
	_, err := c.ExportFiles(ctx, dir)
	return err
}

// ImportDirectory merges dir into the store.
func (c *Codec) ImportDirectory(ctx context.Context, dir string) error {
	_, err := c.Import(ctx, dir)
	return err
}

// writeCSV encodes rows with the given separator and writes them to path.
// A non-empty preamble is written verbatim before the rows.
func (c *Codec) writeCSV(path, preamble string, comma rune, rows [][]string) error {
	var buf bytes.Buffer
	buf.WriteString(preamble)

	w := csv.NewWriter(&buf)
	w.Comma = comma
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := afero.WriteFile(c.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
