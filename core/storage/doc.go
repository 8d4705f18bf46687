// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client. catalog-sync uses object storage for two things:
// catalog documents that are published to a bucket instead of shipped as local
// files, and the archive of JSON sync reports.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	data, err := storage.ReadObject(ctx, client, "catalog", "catalog/plans.yaml")
package storage
