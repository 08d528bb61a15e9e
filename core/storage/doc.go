// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so import workbooks can be read from, and export
// workbooks written to, an S3-compatible bucket.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Helpers
//
//   - EnsureBucket: Creates the configured bucket on startup if needed.
//   - ReadObject / WriteObject: Whole-object download and upload. ReadObject
//     stats the object first and refuses anything above the configured limit.
//   - ListKeys: Lists workbook keys under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	data, err := storage.ReadObject(ctx, client, "refdata", "imports/doc_types.xlsx", cfg.MaxObjectBytes())
package storage
