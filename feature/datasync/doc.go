// Package datasync exposes startup and shutdown reconciliation over HTTP:
// status with its prompt, the user's choice, and the automatic policy gated
// by sync.auto_import and sync.auto_export.
package datasync
