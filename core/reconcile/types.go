package reconcile

import (
	"errors"
	"time"
)

var (
	// ErrCancelled is reported when a choice arrives unconfirmed.
	ErrCancelled = errors.New("user cancelled operation")
	// ErrInvalidAction is reported for an action outside the valid set.
	ErrInvalidAction = errors.New("invalid choice action")
)

// ConflictType classifies the relationship between store and CSV at startup.
type ConflictType string

const (
	ConflictCSVMissing    ConflictType = "csv_missing"
	ConflictDBHasMoreData ConflictType = "db_has_more_data"
	ConflictMixedData     ConflictType = "mixed_data"
	ConflictSafe          ConflictType = "safe"
)

// StartupRecommendation is the suggested startup action.
type StartupRecommendation string

const (
	RecommendAutoImport  StartupRecommendation = "auto_import"
	RecommendUserConfirm StartupRecommendation = "user_confirm"
	RecommendSkipImport  StartupRecommendation = "skip_import"
)

// ExitRecommendation is the suggested shutdown action.
type ExitRecommendation string

const (
	RecommendAutoExport      ExitRecommendation = "auto_export"
	RecommendExitUserConfirm ExitRecommendation = "user_confirm"
	RecommendSkipExport      ExitRecommendation = "skip_export"
)

// StartupAction is a user choice at startup.
type StartupAction string

const (
	// ActionImportCSV merges the CSV directory into the store. Rows are only added.
	ActionImportCSV StartupAction = "import_csv"
	// ActionKeepDB leaves both sides untouched.
	ActionKeepDB StartupAction = "keep_db"
	// ActionBackupAndImport exports the store to CSV, then imports it back.
	ActionBackupAndImport StartupAction = "backup_and_import"
)

// ExitAction is a user choice at shutdown.
type ExitAction string

const (
	ActionExportCSV  ExitAction = "export_csv"
	ActionSkipExport ExitAction = "skip_export"
)

// StartupStatus is the startup analysis.
type StartupStatus struct {
	CSVDirExists   bool                  `json:"csv_dir_exists"`
	CSVFilesExist  bool                  `json:"csv_files_exist"`
	CSVGameCount   int64                 `json:"csv_game_count"`
	CSVEntryCount  int64                 `json:"csv_entry_count"`
	DBGameCount    int64                 `json:"db_game_count"`
	DBEntryCount   int64                 `json:"db_entry_count"`
	HasConflict    bool                  `json:"has_conflict"`
	ConflictType   ConflictType          `json:"conflict_type"`
	Recommendation StartupRecommendation `json:"recommendation"`
}

// ExitStatus is the shutdown analysis.
type ExitStatus struct {
	HasChanges     bool               `json:"has_changes"`
	LastExportTime *time.Time         `json:"last_export_time"`
	DBGameCount    int64              `json:"db_game_count"`
	DBEntryCount   int64              `json:"db_entry_count"`
	CSVGameCount   int64              `json:"csv_game_count"`
	CSVEntryCount  int64              `json:"csv_entry_count"`
	Recommendation ExitRecommendation `json:"recommendation"`
}

// StartupChoice is the user's answer to a startup prompt.
type StartupChoice struct {
	Action    StartupAction `json:"action"`
	Confirmed bool          `json:"confirmed"`
}

// ExitChoice is the user's answer to a shutdown prompt.
type ExitChoice struct {
	Action    ExitAction `json:"action"`
	Confirmed bool       `json:"confirmed"`
}

// Result reports the outcome of an action.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	err     error
}

func ok() Result {
	return Result{Success: true}
}

func failed(err error) Result {
	return Result{Error: err.Error(), err: err}
}

// Err returns the underlying failure, or nil on success.
func (r Result) Err() error {
	return r.err
}

// Cancelled reports whether the action was aborted by the user.
func (r Result) Cancelled() bool {
	return errors.Is(r.err, ErrCancelled)
}

// Option is one selectable action in a Prompt.
type Option[A ~string] struct {
	Label       string `json:"label"`
	Action      A      `json:"action"`
	Description string `json:"description"`
}

// Prompt is the text shown to the user for a reconciliation decision.
type Prompt[A ~string] struct {
	Title   string      `json:"title"`
	Message string      `json:"message"`
	Options []Option[A] `json:"options"`
}

// Allows reports whether action is one of the offered options.
func (p Prompt[A]) Allows(action A) bool {
	for _, o := range p.Options {
		if o.Action == action {
			return true
		}
	}
	return false
}

// snapshot is the baseline size AnalyzeExit compares the store against.
type snapshot struct {
	games   int64
	entries int64
}
