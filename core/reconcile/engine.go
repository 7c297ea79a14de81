package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Engine reconciles the store with its CSV directory. Build one per session.
type Engine struct {
	counter Counter
	codec   Codec
	fs      afero.Fs
	csvDir  string
	logger  *zap.Logger

	csvBaseline bool

	mu         sync.Mutex
	initial    *snapshot
	lastExport *time.Time
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCSVBaseline takes the change detection snapshot from the CSV directory
// instead of the store. Commands that live for a single step use it, since
// the changes they must detect were made by earlier processes. Without CSV
// files no snapshot is kept.
func WithCSVBaseline() EngineOption {
	return func(e *Engine) {
		e.csvBaseline = true
	}
}

// NewEngine creates an engine and records the store size for change
// detection. When the store cannot be counted no snapshot is kept and
// AnalyzeExit falls back to first-run semantics.
func NewEngine(ctx context.Context, counter Counter, codec Codec, fs afero.Fs, csvDir string, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		counter: counter,
		codec:   codec,
		fs:      fs,
		csvDir:  csvDir,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.csvBaseline {
		if csv := scanCSV(fs, csvDir); csv.filesExist {
			e.initial = &snapshot{games: csv.gameCount, entries: csv.entryCount}
		}
		return e
	}

	games, entries, err := e.countStore(ctx)
	if err != nil {
		logger.Warn("Failed to record initial store state", zap.Error(err))
		return e
	}
	e.initial = &snapshot{games: games, entries: entries}
	return e
}

// CSVDir returns the CSV directory the engine works on.
func (e *Engine) CSVDir() string {
	return e.csvDir
}

// AnalyzeStartup compares the store with the CSV directory.
func (e *Engine) AnalyzeStartup(ctx context.Context) (StartupStatus, error) {
	csv := scanCSV(e.fs, e.csvDir)

	games, entries, err := e.countStore(ctx)
	if err != nil {
		return StartupStatus{}, err
	}

	status := Classify(StartupStatus{
		CSVDirExists:  csv.dirExists,
		CSVFilesExist: csv.filesExist,
		CSVGameCount:  csv.gameCount,
		CSVEntryCount: csv.entryCount,
		DBGameCount:   games,
		DBEntryCount:  entries,
	})

	e.logger.Debug("Startup analysis",
		zap.String("csv_dir", e.csvDir),
		zap.Int64("csv_games", status.CSVGameCount),
		zap.Int64("csv_entries", status.CSVEntryCount),
		zap.Int64("db_games", status.DBGameCount),
		zap.Int64("db_entries", status.DBEntryCount),
		zap.String("conflict", string(status.ConflictType)),
		zap.String("recommendation", string(status.Recommendation)),
	)
	return status, nil
}

// Classify fills the conflict fields of s from its six counts.
func Classify(s StartupStatus) StartupStatus {
	dbHasData := s.DBGameCount > 0 || s.DBEntryCount > 0
	csvHasData := s.CSVGameCount > 0 || s.CSVEntryCount > 0

	switch {
	case !s.CSVDirExists || !s.CSVFilesExist:
		if dbHasData {
			s.HasConflict, s.ConflictType, s.Recommendation = true, ConflictCSVMissing, RecommendUserConfirm
		} else {
			s.HasConflict, s.ConflictType, s.Recommendation = false, ConflictSafe, RecommendSkipImport
		}
	case s.DBGameCount > s.CSVGameCount || s.DBEntryCount > s.CSVEntryCount:
		s.HasConflict, s.ConflictType, s.Recommendation = true, ConflictDBHasMoreData, RecommendUserConfirm
	case csvHasData && dbHasData:
		s.HasConflict, s.ConflictType, s.Recommendation = true, ConflictMixedData, RecommendUserConfirm
	default:
		s.HasConflict, s.ConflictType, s.Recommendation = false, ConflictSafe, RecommendAutoImport
	}
	return s
}

// PerformAutoImport imports the CSV directory into the store.
func (e *Engine) PerformAutoImport(ctx context.Context) Result {
	if err := e.codec.ImportDirectory(ctx, e.csvDir); err != nil {
		return e.fail("Auto import failed", err)
	}
	e.logger.Info("Imported CSV directory", zap.String("csv_dir", e.csvDir))
	return ok()
}

// PerformUserChoice runs a confirmed startup choice.
func (e *Engine) PerformUserChoice(ctx context.Context, choice StartupChoice) Result {
	if !choice.Confirmed {
		return failed(ErrCancelled)
	}

	switch choice.Action {
	case ActionImportCSV:
		if err := e.codec.ImportDirectory(ctx, e.csvDir); err != nil {
			return e.fail("Import failed", err)
		}
	case ActionKeepDB:
	case ActionBackupAndImport:
		if err := e.codec.ExportDirectory(ctx, e.csvDir); err != nil {
			return e.fail("Backup export failed", err)
		}
		if err := e.codec.ImportDirectory(ctx, e.csvDir); err != nil {
			return e.fail("Import after backup failed", err)
		}
	default:
		return failed(fmt.Errorf("%w: %q", ErrInvalidAction, choice.Action))
	}

	e.logger.Info("Applied startup choice", zap.String("action", string(choice.Action)))
	return ok()
}

// AnalyzeExit compares the store with the snapshot and the CSV directory.
func (e *Engine) AnalyzeExit(ctx context.Context) (ExitStatus, error) {
	games, entries, err := e.countStore(ctx)
	if err != nil {
		return ExitStatus{}, err
	}
	csv := scanCSV(e.fs, e.csvDir)

	e.mu.Lock()
	hasChanges := games > 0 || entries > 0
	if e.initial != nil {
		hasChanges = games != e.initial.games || entries != e.initial.entries
	}
	lastExport := e.lastExport
	e.mu.Unlock()

	status := ExitStatus{
		HasChanges:     hasChanges,
		LastExportTime: lastExport,
		DBGameCount:    games,
		DBEntryCount:   entries,
		CSVGameCount:   csv.gameCount,
		CSVEntryCount:  csv.entryCount,
		Recommendation: RecommendSkipExport,
	}

	switch {
	case hasChanges:
		status.Recommendation = RecommendExitUserConfirm
	case (games > 0 || entries > 0) && csv.gameCount == 0 && csv.entryCount == 0:
		status.Recommendation = RecommendAutoExport
	}
	return status, nil
}

// PerformExitChoice runs a confirmed shutdown choice.
func (e *Engine) PerformExitChoice(ctx context.Context, choice ExitChoice) Result {
	if !choice.Confirmed {
		return failed(ErrCancelled)
	}

	switch choice.Action {
	case ActionExportCSV:
		if err := e.codec.ExportDirectory(ctx, e.csvDir); err != nil {
			return e.fail("Export failed", err)
		}
		e.MarkLastExportTime()
	case ActionSkipExport:
	default:
		return failed(fmt.Errorf("%w: %q", ErrInvalidAction, choice.Action))
	}

	e.logger.Info("Applied exit choice", zap.String("action", string(choice.Action)))
	return ok()
}

// PerformAutoExport exports the store to the CSV directory.
func (e *Engine) PerformAutoExport(ctx context.Context) Result {
	if err := e.codec.ExportDirectory(ctx, e.csvDir); err != nil {
		return e.fail("Auto export failed", err)
	}
	e.MarkLastExportTime()
	e.logger.Info("Exported CSV directory", zap.String("csv_dir", e.csvDir))
	return ok()
}

// MarkLastExportTime records that an export just completed.
func (e *Engine) MarkLastExportTime() {
	t := e.now().UTC()
	e.mu.Lock()
	e.lastExport = &t
	e.mu.Unlock()
}

// LastExportTime returns when the last export completed, or nil.
func (e *Engine) LastExportTime() *time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastExport
}

func (e *Engine) countStore(ctx context.Context) (int64, int64, error) {
	games, err := e.counter.CountGames(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count games: %w", err)
	}
	entries, err := e.counter.CountEntries(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return games, entries, nil
}

func (e *Engine) fail(msg string, err error) Result {
	e.logger.Error(msg, zap.String("csv_dir", e.csvDir), zap.Error(err))
	return failed(err)
}
