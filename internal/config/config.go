package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the bundle asset service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8701"`

	// Bundle origin: where bundles are mirrored from
	BundleBaseURL string `env:"BUNDLE_BASE_URL,default=https://cdn.bokeh.org/bokeh/release"`

	// Storage configuration
	DeploymentMode string `env:"DEPLOYMENT_MODE,default=local"`
	LocalAssetsDir string `env:"LOCAL_ASSETS_DIR,default=./assets"`
	GCSBucket      string `env:"GCS_BUCKET"`

	// Fetch behavior
	FetchTimeoutSeconds int `env:"FETCH_TIMEOUT_SECONDS,default=30"`

	// Docs page source
	DocsPath string `env:"DOCS_PATH,default=docs/USAGE.md"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=text"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// FetchTimeout returns the bundle fetch timeout as a duration
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
