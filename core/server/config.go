package server

import "path/filepath"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// Mode selects the runtime profile (production, test).
	Mode string `mapstructure:"mode" default:"production"`
}

const (
	ModeProduction = "production"
	ModeTest       = "test"
)

// IsValidMode checks if the configured mode is valid.
func (c Config) IsValidMode() bool {
	switch c.Mode {
	case ModeProduction, ModeTest:
		return true
	default:
		return false
	}
}

// IsTest reports whether the application runs against the test data directory.
func (c Config) IsTest() bool {
	return c.Mode == ModeTest
}

// DataRoot returns the directory that holds the default database and CSV mirror.
func (c Config) DataRoot() string {
	if c.IsTest() {
		return "test-data"
	}
	return "."
}

// DefaultCSVDir returns the CSV directory used when none is configured.
func (c Config) DefaultCSVDir() string {
	return filepath.Join(c.DataRoot(), "csv")
}

// DefaultDatabasePath returns the sqlite file used when none is configured.
func (c Config) DefaultDatabasePath() string {
	if c.IsTest() {
		return filepath.Join(c.DataRoot(), "dict-test.db")
	}
	return filepath.Join("data", "dict.db")
}
