package csvsync

import (
	"context"

	"dict-manager/feature/dictionary/models"

	"go.uber.org/zap"
)

// Exporter writes the store into a CSV directory and reports the files.
// Both Codec and Mirror implement it.
type Exporter interface {
	ExportFiles(ctx context.Context, dir string) ([]string, error)
	ExportDirectory(ctx context.Context, dir string) error
	ImportDirectory(ctx context.Context, dir string) error
}

// Puller restores a CSV directory from a remote copy. Mirror implements it.
type Puller interface {
	Pull(ctx context.Context, dir string) ([]string, error)
}

// Service runs CSV and IME exports against the configured directories.
type Service struct {
	codec     *Codec
	exporter  Exporter
	csvDir    string
	exportDir string
	logger    *zap.Logger
}

// NewService creates a CSV service. exporter is usually the codec itself, or
// a Mirror wrapping it.
func NewService(codec *Codec, exporter Exporter, csvDir, exportDir string, logger *zap.Logger) *Service {
	return &Service{
		codec:     codec,
		exporter:  exporter,
		csvDir:    csvDir,
		exportDir: exportDir,
		logger:    logger,
	}
}

// CSVDir returns the default CSV directory.
func (s *Service) CSVDir() string {
	return s.csvDir
}

// Export writes the store into dir, or the default CSV directory.
func (s *Service) Export(ctx context.Context, dir string) ([]string, error) {
	return s.exporter.ExportFiles(ctx, s.dirOrDefault(dir))
}

// Import merges dir, or the default CSV directory, into the store.
func (s *Service) Import(ctx context.Context, dir string) (*ImportSummary, error) {
	return s.codec.Import(ctx, s.dirOrDefault(dir))
}

// Pull restores dir, or the default CSV directory, from the object storage
// mirror. It fails with ErrMirrorDisabled when the exporter has no remote.
func (s *Service) Pull(ctx context.Context, dir string) ([]string, error) {
	p, ok := s.exporter.(Puller)
	if !ok {
		return nil, ErrMirrorDisabled
	}
	return p.Pull(ctx, s.dirOrDefault(dir))
}

// ImportFile merges a single per-game file.
func (s *Service) ImportFile(ctx context.Context, path string) (*ImportSummary, error) {
	return s.codec.ImportFile(ctx, path)
}

// ExportIME writes a vendor dictionary. An empty path selects the suggested
// name under the export directory.
func (s *Service) ExportIME(ctx context.Context, gameID uint, vendor models.Vendor, path string) (string, error) {
	if path == "" {
		paths, err := s.codec.SuggestPaths(ctx, &gameID, s.exportDir)
		if err != nil {
			return "", err
		}
		switch vendor {
		case models.VendorGoogle:
			path = paths.GoogleCSV
		case models.VendorMS:
			path = paths.MsCSV
		default:
			path = paths.AtokCSV
		}
	}
	if err := s.codec.ExportIME(ctx, gameID, vendor, path); err != nil {
		return "", err
	}
	return path, nil
}

// ExportMicrosoftIME writes the tab separated MS-IME file into the export directory.
func (s *Service) ExportMicrosoftIME(ctx context.Context, gameID uint) (string, error) {
	return s.codec.ExportMicrosoftIME(ctx, gameID, s.exportDir)
}

// SuggestPaths proposes dated file names under the export directory.
func (s *Service) SuggestPaths(ctx context.Context, gameID *uint) (SuggestedPaths, error) {
	return s.codec.SuggestPaths(ctx, gameID, s.exportDir)
}

func (s *Service) dirOrDefault(dir string) string {
	if dir == "" {
		return s.csvDir
	}
	return dir
}
