package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorageClient handles local file system storage operations
type LocalStorageClient struct {
	baseDir string
}

// NewLocalStorageClient creates a new local storage client
func NewLocalStorageClient(baseDir string) (*LocalStorageClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalStorageClient{
		baseDir: baseDir,
	}, nil
}

// Close is a no-op for local storage (implements same interface as GCSClient)
func (l *LocalStorageClient) Close() error {
	return nil
}

// StoreFile writes a bundle file under the base directory
func (l *LocalStorageClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	fullPath, err := l.resolve(filePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filePath, err)
	}

	if err := os.WriteFile(fullPath, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", fullPath, err)
	}

	return nil
}

// GetFile retrieves a bundle file from local storage
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	fullPath, err := l.resolve(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// ListDir lists files under a directory prefix, sorted by name
func (l *LocalStorageClient) ListDir(ctx context.Context, dirPath string) ([]string, error) {
	fullPath, err := l.resolve(dirPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list directory %s: %w", dirPath, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileExists checks if a file exists in local storage
func (l *LocalStorageClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	fullPath, err := l.resolve(filePath)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	return true, nil
}

// resolve joins filePath with the base directory, rejecting path escapes.
func (l *LocalStorageClient) resolve(filePath string) (string, error) {
	cleaned := filepath.Clean("/" + filePath)
	if strings.Contains(filePath, "..") {
		return "", fmt.Errorf("invalid path %s", filePath)
	}
	return filepath.Join(l.baseDir, cleaned), nil
}
