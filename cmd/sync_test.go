package cmd

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"dict-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withStdin(t *testing.T, input string) {
	t.Helper()
	prev := stdin
	stdin = bufio.NewReader(strings.NewReader(input))
	t.Cleanup(func() { stdin = prev })
}

func exitPrompt() reconcile.Prompt[reconcile.ExitAction] {
	return reconcile.ExitMessage(reconcile.ExitStatus{HasChanges: true, DBGameCount: 1, DBEntryCount: 3})
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		flag    string
		want    reconcile.ExitAction
		wantErr error
	}{
		{"first option", "1\n", "", reconcile.ActionExportCSV, nil},
		{"second option", " 2 \n", "", reconcile.ActionSkipExport, nil},
		{"empty answer", "\n", "", "", reconcile.ErrCancelled},
		{"out of range", "9\n", "", "", reconcile.ErrCancelled},
		{"closed stdin", "", "", "", reconcile.ErrCancelled},
		{"flag", "", "skip_export", reconcile.ActionSkipExport, nil},
		{"flag not offered", "", "import_csv", "", reconcile.ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withStdin(t, tt.input)
			got, err := choose(exitPrompt(), tt.flag)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbort(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := zap.New(core)

	// A declined prompt exits cleanly, like a declined confirmation
	withStdin(t, "\n")
	_, err := choose(exitPrompt(), "")
	assert.NoError(t, abort(l, err))

	syncYes = false
	withStdin(t, "n\n")
	assert.False(t, confirm("Apply?"))

	assert.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "cancelled")

	err = abort(l, reconcile.ErrInvalidAction)
	assert.True(t, errors.Is(err, reconcile.ErrInvalidAction))
}
