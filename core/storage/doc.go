// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide the few operations the CSV mirror
// needs. It supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: Ensure the mirror bucket.
//   - PutObject: Upload an exported CSV file.
//   - ListObjects / RemoveObject: Prune files no longer produced by an export.
//   - GetObject: Download mirrored files when pulling onto a new machine.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
