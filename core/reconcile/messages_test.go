package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartupMessage_Options(t *testing.T) {
	tests := []struct {
		kind    ConflictType
		allowed []StartupAction
		denied  []StartupAction
	}{
		{ConflictCSVMissing, []StartupAction{ActionKeepDB, ActionBackupAndImport}, []StartupAction{ActionImportCSV}},
		{ConflictDBHasMoreData, []StartupAction{ActionImportCSV, ActionKeepDB, ActionBackupAndImport}, nil},
		{ConflictMixedData, []StartupAction{ActionImportCSV, ActionKeepDB, ActionBackupAndImport}, nil},
		{ConflictSafe, nil, []StartupAction{ActionImportCSV, ActionKeepDB, ActionBackupAndImport}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p := StartupMessage(StartupStatus{ConflictType: tt.kind, DBGameCount: 2, DBEntryCount: 5})
			assert.NotEmpty(t, p.Title)
			assert.Len(t, p.Options, len(tt.allowed))
			for _, a := range tt.allowed {
				assert.True(t, p.Allows(a), a)
			}
			for _, a := range tt.denied {
				assert.False(t, p.Allows(a), a)
			}
		})
	}
}

func TestStartupMessage_InterpolatesCounts(t *testing.T) {
	p := StartupMessage(StartupStatus{ConflictType: ConflictMixedData, CSVGameCount: 2, CSVEntryCount: 3, DBGameCount: 1, DBEntryCount: 1})
	assert.Contains(t, p.Message, "CSV: 2 games, 3 entries")
	assert.Contains(t, p.Message, "Database: 1 games, 1 entries")
}

func TestExitMessage(t *testing.T) {
	changed := ExitMessage(ExitStatus{HasChanges: true, Recommendation: RecommendExitUserConfirm, DBGameCount: 1, DBEntryCount: 3})
	assert.True(t, changed.Allows(ActionExportCSV))
	assert.True(t, changed.Allows(ActionSkipExport))
	assert.Contains(t, changed.Message, "1 games, 3 entries")

	backup := ExitMessage(ExitStatus{Recommendation: RecommendAutoExport})
	assert.Len(t, backup.Options, 2)

	quiet := ExitMessage(ExitStatus{Recommendation: RecommendSkipExport})
	assert.Empty(t, quiet.Options)
}
