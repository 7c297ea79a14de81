package reconcile

import "context"

// Counter reports the size of the dictionary store.
type Counter interface {
	CountGames(ctx context.Context) (int64, error)
	CountEntries(ctx context.Context) (int64, error)
}

// Codec moves the whole store to and from a CSV directory.
type Codec interface {
	// ExportDirectory writes the store into dir, creating it when absent.
	ExportDirectory(ctx context.Context, dir string) error
	// ImportDirectory merges dir into the store. A missing dir is an error.
	ImportDirectory(ctx context.Context, dir string) error
}
