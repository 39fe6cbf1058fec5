// Package storage holds the mirrored runtime bundles the service serves.
// Two backends exist: a local directory for development and a GCS bucket for
// deployed environments.
package storage

import (
	"context"
)

// StorageClient defines the interface for bundle asset storage operations
type StorageClient interface {
	// Close closes the storage client
	Close() error

	// StoreFile stores a file at the specified path
	StoreFile(ctx context.Context, filePath string, fileData []byte) error

	// GetFile retrieves a file from the specified path
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListDir lists files under a directory prefix
	ListDir(ctx context.Context, dirPath string) ([]string, error)

	// FileExists checks if a file exists at the specified path
	FileExists(ctx context.Context, filePath string) (bool, error)
}
