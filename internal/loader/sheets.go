package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultSheetsBaseURL is the Google Sheets host used to build export URLs.
const DefaultSheetsBaseURL = "https://docs.google.com/spreadsheets"

// SheetsFetcher implements Fetcher for a published Google spreadsheet using
// the gviz CSV export.
type SheetsFetcher struct {
	Client  *http.Client
	BaseURL string
	SheetID string
	Sheet   string // optional tab name
}

// NewSheetsFetcher creates a fetcher for the spreadsheet identified by a
// sharing URL or bare ID.
func NewSheetsFetcher(urlOrID, sheet, proxyURL string) (*SheetsFetcher, error) {
	id, err := SheetID(urlOrID)
	if err != nil {
		return nil, err
	}
	return &SheetsFetcher{
		Client:  newHTTPClient(proxyURL),
		BaseURL: DefaultSheetsBaseURL,
		SheetID: id,
		Sheet:   sheet,
	}, nil
}

func (f *SheetsFetcher) Name() string { return "google-sheets" }

// SheetID extracts the spreadsheet ID from a URL such as
// https://docs.google.com/spreadsheets/d/<id>/edit#gid=0. A value without
// "/d/" is returned as-is.
func SheetID(urlOrID string) (string, error) {
	s := strings.TrimSpace(urlOrID)
	if s == "" {
		return "", errors.New("empty spreadsheet identifier")
	}
	if _, rest, ok := strings.Cut(s, "/d/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		id, _, _ = strings.Cut(id, "?")
		id, _, _ = strings.Cut(id, "#")
		if id == "" {
			return "", fmt.Errorf("no spreadsheet id in %q", urlOrID)
		}
		return id, nil
	}
	if strings.ContainsAny(s, "/?#") {
		return "", fmt.Errorf("unrecognised spreadsheet identifier %q", urlOrID)
	}
	return s, nil
}

// ExportURL returns the CSV export URL for the configured sheet.
func (f *SheetsFetcher) ExportURL() string {
	u := fmt.Sprintf("%s/d/%s/gviz/tq?tqx=out:csv", strings.TrimRight(f.BaseURL, "/"), url.PathEscape(f.SheetID))
	if f.Sheet != "" {
		u += "&sheet=" + url.QueryEscape(f.Sheet)
	}
	return u
}

func (f *SheetsFetcher) FetchCSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ExportURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sheets read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: status %d, body: %s", resp.StatusCode, truncate(body, 512))
	}
	// An unpublished sheet redirects to a sign-in page instead of failing.
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "text/html") {
		return nil, errors.New("sheets: got HTML instead of CSV, is the sheet published?")
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
