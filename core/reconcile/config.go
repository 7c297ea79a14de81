package reconcile

// Config holds the CSV mirror locations and the automatic sync policy.
type Config struct {
	// CSVDir is the git-friendly CSV mirror. Empty selects the mode default.
	CSVDir string `mapstructure:"csv_dir" default:""`
	// ExportDir receives vendor IME dictionaries.
	ExportDir string `mapstructure:"export_dir" default:"export"`
	// AutoImport allows an auto_import recommendation to run without asking.
	AutoImport bool `mapstructure:"auto_import" default:"true"`
	// AutoExport allows an auto_export recommendation to run without asking.
	AutoExport bool `mapstructure:"auto_export" default:"true"`
}
