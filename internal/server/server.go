// Package server exposes the service over HTTP: version-stamped runtime
// bundles, a health check, a docs page, and a server-side demo render.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/streamlit/streamlit-bokeh/internal/bundles"
	"github.com/streamlit/streamlit-bokeh/internal/config"
	"github.com/streamlit/streamlit-bokeh/internal/logger"
	"github.com/streamlit/streamlit-bokeh/internal/storage"
)

// Server represents the main application server
type Server struct {
	Config         *config.Config
	Storage        storage.StorageClient
	DeploymentMode storage.DeploymentMode

	origin bundles.Fetcher
	docs   *DocsPage
	log    *logger.Logger
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config, deploymentMode storage.DeploymentMode) (*Server, error) {
	store, err := storage.NewStorageClient(ctx, deploymentMode, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	log := logger.GetGlobalLogger().WithComponent("server")
	log.Info("bundle storage initialized", map[string]interface{}{
		"mode": string(deploymentMode),
	})

	return &Server{
		Config:         cfg,
		Storage:        store,
		DeploymentMode: deploymentMode,
		origin:         bundles.NewHTTPFetcher(cfg.BundleBaseURL, cfg.FetchTimeout()),
		docs:           NewDocsPage(cfg.DocsPath),
		log:            log,
	}, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/bokeh/", s.HandleBundle)
	mux.HandleFunc("/demo", s.HandleDemo)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}
