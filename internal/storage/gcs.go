package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/streamlit/streamlit-bokeh/internal/logger"
)

// GCSClient handles Google Cloud Storage operations
type GCSClient struct {
	client *storage.Client
	bucket string
	log    *logger.Logger
}

// NewGCSClient creates a new GCS client
func NewGCSClient(ctx context.Context, bucketName string) (*GCSClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client: client,
		bucket: bucketName,
		log:    logger.GetGlobalLogger().WithComponent("gcs"),
	}, nil
}

// Close closes the GCS client
func (g *GCSClient) Close() error {
	return g.client.Close()
}

// StoreFile stores a bundle file in GCS
func (g *GCSClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	g.log.Debug("storing file to GCS", map[string]interface{}{
		"bucket": g.bucket,
		"object": filePath,
	})

	obj := g.client.Bucket(g.bucket).Object(filePath)
	writer := obj.NewWriter(ctx)
	writer.ContentType = GetContentType(filePath)
	// Bundles are version-stamped, so they never change under a name.
	writer.CacheControl = "public, max-age=31536000, immutable"

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write object %s: %w", filePath, err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", filePath, err)
	}

	return nil
}

// GetFile retrieves a bundle file from GCS
func (g *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	reader, err := g.client.Bucket(g.bucket).Object(filePath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", filePath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", filePath, err)
	}
	return data, nil
}

// ListDir lists objects under a directory prefix, sorted by name
func (g *GCSClient) ListDir(ctx context.Context, dirPath string) ([]string, error) {
	prefix := strings.TrimSuffix(dirPath, "/") + "/"

	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var files []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		files = append(files, strings.TrimPrefix(attrs.Name, prefix))
	}
	sort.Strings(files)
	return files, nil
}

// FileExists checks if an object exists in GCS
func (g *GCSClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	_, err := g.client.Bucket(g.bucket).Object(filePath).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %w", filePath, err)
	}
	return true, nil
}
