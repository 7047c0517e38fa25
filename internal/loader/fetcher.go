package loader

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Fetcher defines the interface for fetching the raw CSV export.
type Fetcher interface {
	FetchCSV(ctx context.Context) ([]byte, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
