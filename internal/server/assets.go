package server

import (
	"context"
	"fmt"
	"regexp"

	"github.com/streamlit/streamlit-bokeh/internal/storage"
)

// bundleNamePattern accepts only the version-stamped filenames the loader
// requests: bokeh-3.7.3.min.js, bokeh-gl-3.7.3.min.js, ...
var bundleNamePattern = regexp.MustCompile(`^bokeh(-[a-z]+)?-\d+\.\d+\.\d+\.min\.js$`)

// storageFetcher resolves bundle files from the service's own storage,
// mirroring them from the upstream CDN on first request. Implements
// bundles.Fetcher, so the demo page loads through the same path a deployed
// page would.
type storageFetcher struct {
	server *Server
}

func (f *storageFetcher) Fetch(ctx context.Context, filename string) ([]byte, error) {
	return f.server.bundleBytes(ctx, filename)
}

// bundleBytes returns a bundle's contents from storage, falling back to the
// upstream origin and caching the result.
func (s *Server) bundleBytes(ctx context.Context, filename string) ([]byte, error) {
	if !bundleNamePattern.MatchString(filename) {
		return nil, fmt.Errorf("invalid bundle filename %q", filename)
	}

	path := storage.BundlePath(filename)
	if exists, err := s.Storage.FileExists(ctx, path); err == nil && exists {
		return s.Storage.GetFile(ctx, path)
	}

	data, err := s.origin.Fetch(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("bundle %s not mirrored and origin fetch failed: %w", filename, err)
	}

	if err := s.Storage.StoreFile(ctx, path, data); err != nil {
		// Serving still works; only the mirror is cold next time.
		s.log.WarnErr("failed to cache bundle", err, map[string]interface{}{"file": filename})
	}

	return data, nil
}
