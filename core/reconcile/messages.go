package reconcile

import "fmt"

// StartupMessage builds the prompt for a startup status. Only actions that
// make sense for the conflict type are offered.
func StartupMessage(s StartupStatus) Prompt[StartupAction] {
	importOpt := Option[StartupAction]{
		Label:       "Import from CSV",
		Action:      ActionImportCSV,
		Description: "Merge the CSV files into the database. Rows only present in the database are kept.",
	}
	keepOpt := Option[StartupAction]{
		Label:       "Keep database",
		Action:      ActionKeepDB,
		Description: "Use the database as it is.",
	}
	backupOpt := Option[StartupAction]{
		Label:       "Save database to CSV, then import",
		Action:      ActionBackupAndImport,
		Description: "Write the current data to CSV first so nothing is lost.",
	}

	switch s.ConflictType {
	case ConflictCSVMissing:
		return Prompt[StartupAction]{
			Title: "CSV files not found",
			Message: fmt.Sprintf("No CSV files were found, but the database holds %d games and %d entries. How do you want to proceed?",
				s.DBGameCount, s.DBEntryCount),
			Options: []Option[StartupAction]{
				keepOpt,
				{
					Label:       "Save database to CSV",
					Action:      ActionBackupAndImport,
					Description: "Write the current data to CSV files.",
				},
			},
		}
	case ConflictDBHasMoreData:
		return Prompt[StartupAction]{
			Title: "The database has more data than the CSV files",
			Message: fmt.Sprintf("CSV: %d games, %d entries\nDatabase: %d games, %d entries\n\nWork in progress may be lost.",
				s.CSVGameCount, s.CSVEntryCount, s.DBGameCount, s.DBEntryCount),
			Options: []Option[StartupAction]{importOpt, keepOpt, backupOpt},
		}
	case ConflictMixedData:
		return Prompt[StartupAction]{
			Title: "Both CSV files and database hold data",
			Message: fmt.Sprintf("CSV: %d games, %d entries\nDatabase: %d games, %d entries",
				s.CSVGameCount, s.CSVEntryCount, s.DBGameCount, s.DBEntryCount),
			Options: []Option[StartupAction]{importOpt, keepOpt, backupOpt},
		}
	default:
		return Prompt[StartupAction]{
			Title:   "Data sync",
			Message: "Synchronizing data.",
			Options: []Option[StartupAction]{},
		}
	}
}

// ExitMessage builds the prompt for a shutdown status.
func ExitMessage(s ExitStatus) Prompt[ExitAction] {
	switch {
	case s.HasChanges:
		return Prompt[ExitAction]{
			Title: "Changes detected",
			Message: fmt.Sprintf("Data changed during this session.\n\nDatabase: %d games, %d entries\nCSV: %d games, %d entries\n\nSave the changes to CSV?",
				s.DBGameCount, s.DBEntryCount, s.CSVGameCount, s.CSVEntryCount),
			Options: []Option[ExitAction]{
				{
					Label:       "Save to CSV and exit",
					Action:      ActionExportCSV,
					Description: "Write the current data to CSV files before exiting.",
				},
				{
					Label:       "Exit without saving",
					Action:      ActionSkipExport,
					Description: "Exit without writing CSV files. Changes are not mirrored.",
				},
			},
		}
	case s.Recommendation == RecommendAutoExport:
		return Prompt[ExitAction]{
			Title:   "Back up data",
			Message: fmt.Sprintf("The current data will be saved to CSV files.\n\nDatabase: %d games, %d entries", s.DBGameCount, s.DBEntryCount),
			Options: []Option[ExitAction]{
				{
					Label:       "Save to CSV",
					Action:      ActionExportCSV,
					Description: "Write the data to CSV files.",
				},
				{
					Label:       "Skip",
					Action:      ActionSkipExport,
					Description: "Do not write CSV files.",
				},
			},
		}
	default:
		return Prompt[ExitAction]{
			Title:   "Exiting",
			Message: "No changes. Exiting.",
			Options: []Option[ExitAction]{},
		}
	}
}
