// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for the CLI (console encoding, readable
// timestamps) and for the local HTTP API (json encoding when running headless).
//
// # Context Awareness
//
// The WithRayID helper extracts the RayID from a Fiber context and attaches it to the
// log entry, so all logs related to a specific request can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console or json
//   - File: optional path receiving a copy of the output
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
