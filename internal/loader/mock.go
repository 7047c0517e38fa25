package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"MarketBreadth/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	CSV   []byte
	Err   error
	calls atomic.Int64
}

// NewMockFetcher creates a MockFetcher serving days trading days of
// synthetic data ending today.
func NewMockFetcher(days int) *MockFetcher {
	return &MockFetcher{CSV: generateMockCSV(time.Now(), days)}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCSV(_ context.Context) ([]byte, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.CSV, nil
}

// Calls reports how many times FetchCSV has been invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func generateMockCSV(end time.Time, days int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := append([]string{model.ColDate}, model.NumericColumns...)
	_ = w.Write(header)

	// Walk back over weekdays so the series has realistic weekend gaps.
	var dates []time.Time
	for d := end; len(dates) < days; d = d.AddDate(0, 0, -1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}

	sum := 0.0
	for i := len(dates) - 1; i >= 0; i-- {
		n := float64(len(dates) - 1 - i)
		p := 5000 + 300*math.Sin(n/40) + n*0.8
		osc := 60 * math.Sin(n/9)
		sum += osc
		ma20 := 50 + 35*math.Sin(n/15)
		ma60 := 50 + 25*math.Sin(n/30)
		ma200 := 50 + 15*math.Sin(n/60)
		_ = w.Write([]string{
			dates[i].Format("2006-01-02"),
			ftoa(p * 0.998), ftoa(p * 1.006), ftoa(p * 0.993), ftoa(p),
			ftoa(ma20), ftoa(ma60), ftoa(ma200),
			ftoa(osc), ftoa(sum),
		})
	}
	w.Flush()
	return buf.Bytes()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
