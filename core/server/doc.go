// Package server holds the HTTP server configuration and runtime mode.
//
// The Mode field replaces any guessing about the environment from file paths:
// the caller states whether it runs in production or against the test data
// directory, and the default locations of the database and the CSV mirror are
// derived from it.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the start command to configure the HTTP listener.
package server
