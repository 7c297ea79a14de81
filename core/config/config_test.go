package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "dict.db"), cfg.Database.Name)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "csv", cfg.Sync.CSVDir)
	assert.Equal(t, "export", cfg.Sync.ExportDir)
	assert.True(t, cfg.Sync.AutoImport)
	assert.True(t, cfg.Sync.AutoExport)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoadConfig_TestMode(t *testing.T) {
	t.Setenv("SERVER_MODE", "test")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("test-data", "csv"), cfg.Sync.CSVDir)
	assert.Equal(t, filepath.Join("test-data", "dict-test.db"), cfg.Database.Name)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "SYNC_CSV_DIR=/tmp/dict-csv\nDATABASE_NAME=:memory:\nSYNC_AUTO_EXPORT=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SYNC_CSV_DIR")
		os.Unsetenv("DATABASE_NAME")
		os.Unsetenv("SYNC_AUTO_EXPORT")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/dict-csv", cfg.Sync.CSVDir)
	assert.Equal(t, ":memory:", cfg.Database.Name)
	assert.False(t, cfg.Sync.AutoExport)
}
