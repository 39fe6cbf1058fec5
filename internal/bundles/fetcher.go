package bundles

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves a bundle file's contents by filename.
type Fetcher interface {
	Fetch(ctx context.Context, filename string) ([]byte, error)
}

// HTTPFetcher fetches bundles from an HTTP asset origin (the Bokeh CDN or
// the service's own /bokeh endpoint).
type HTTPFetcher struct {
	client  *resty.Client
	baseURL string
}

// NewHTTPFetcher creates a fetcher against baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)

	return &HTTPFetcher{
		client:  client,
		baseURL: baseURL,
	}
}

// Fetch downloads a single bundle file.
func (f *HTTPFetcher) Fetch(ctx context.Context, filename string) ([]byte, error) {
	url := f.baseURL + "/" + filename

	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("bundle origin returned status %d for %s", resp.StatusCode(), url)
	}

	return resp.Body(), nil
}
