package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// URLFetcher implements Fetcher for any HTTP endpoint that serves the series
// as CSV, with optional bearer authentication.
type URLFetcher struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewURLFetcher creates a new fetcher with optional proxy support.
func NewURLFetcher(rawURL, apiKey, proxyURL string) *URLFetcher {
	return &URLFetcher{
		URL:    rawURL,
		APIKey: apiKey,
		Client: newHTTPClient(proxyURL),
	}
}

func (f *URLFetcher) Name() string { return "csv-url" }

func (f *URLFetcher) FetchCSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch csv: status %d, body: %s", resp.StatusCode, truncate(body, 512))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch csv read body: %w", err)
	}
	return body, nil
}
