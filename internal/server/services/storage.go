// Package services implements the server's use cases on top of the
// repositories, the object store and the auth primitives.
package services

import "context"

// ObjectStore is the part of the object storage the services use.
// storage.S3Storage satisfies it.
type ObjectStore interface {
	FileURL(key string) string
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// UserPrefix is the storage prefix all of a user's uploads live under.
func UserPrefix(userID int64) string {
	return "uploads/" + itoa(userID) + "/"
}
