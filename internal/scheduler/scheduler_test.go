package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"MarketBreadth/internal/loader"
	"MarketBreadth/internal/model"
	"MarketBreadth/internal/recorder"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Notify(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

const csvHeader = "Date,Open,High,Low,Close,MA20,MA60,MA200,McClellan_Oscillator,McClellan_Summation_Index\n"

func sampleCSV() []byte {
	var b strings.Builder
	b.WriteString(csvHeader)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		b.WriteString(d + ",100,110,90,105,60,55,50,-30,")
		b.WriteString([]string{"10", "20", "30"}[i])
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func newTestScheduler(t *testing.T, f *loader.MockFetcher) (*Scheduler, *captureNotifier, *recorder.SQLiteRecorder) {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { rec.Close() })
	n := &captureNotifier{}
	l := loader.NewLoader(f, loader.NewCache(time.Hour), rec)
	return NewScheduler(context.Background(), l, n, rec, 2), n, rec
}

func TestBuildSnapshot(t *testing.T) {
	rows, err := loader.ParseCSVBytes(sampleCSV())
	if err != nil {
		t.Fatal(err)
	}
	snap, err := BuildSnapshot(&model.Table{Rows: rows}, 2)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if !snap.Date.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", snap.Date)
	}
	if !snap.SummationMean.Valid || snap.SummationMean.Float64 != 25 {
		t.Errorf("summation mean = %v, want 25", snap.SummationMean)
	}

	if _, err := BuildSnapshot(&model.Table{}, 2); err == nil {
		t.Error("expected error for empty table")
	}
}

func TestSnapshotTask(t *testing.T) {
	f := &loader.MockFetcher{CSV: sampleCSV()}
	s, n, rec := newTestScheduler(t, f)

	// Warm the cache; the task must still refetch.
	if _, err := s.Loader.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.RunSnapshotNow()

	if f.Calls() != 2 {
		t.Errorf("expected snapshot to force a fresh fetch, got %d fetches", f.Calls())
	}
	snaps, err := rec.RecentSnapshots(5)
	if err != nil {
		t.Fatalf("RecentSnapshots: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Summation.Float64 != 30 {
		t.Errorf("recorded snapshots = %+v", snaps)
	}
	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "2024-01-03") || !strings.Contains(n.msgs[0], "weak") {
		t.Errorf("notifications = %q", n.msgs)
	}
}

func TestSnapshotTaskFetchError(t *testing.T) {
	f := &loader.MockFetcher{Err: errors.New("timeout")}
	s, n, rec := newTestScheduler(t, f)
	s.RunSnapshotNow()

	if len(n.msgs) != 1 || !strings.Contains(n.msgs[0], "timeout") {
		t.Errorf("expected failure notification, got %q", n.msgs)
	}
	if snaps, _ := rec.RecentSnapshots(5); len(snaps) != 0 {
		t.Errorf("no snapshot should be recorded on failure, got %d", len(snaps))
	}
}

func TestHandleCommand(t *testing.T) {
	f := &loader.MockFetcher{CSV: sampleCSV()}
	s, _, _ := newTestScheduler(t, f)
	ctx := context.Background()

	if got := s.HandleCommand(ctx, "/breadth"); !strings.Contains(got, "Market Breadth") {
		t.Errorf("/breadth = %q", got)
	}
	if got := s.HandleCommand(ctx, "/breadth@BreadthBot"); !strings.Contains(got, "Market Breadth") {
		t.Errorf("/breadth@bot = %q", got)
	}
	if f.Calls() != 1 {
		t.Errorf("/breadth should use the cache, got %d fetches", f.Calls())
	}

	if got := s.HandleCommand(ctx, "/refresh"); !strings.Contains(got, "Reloaded 3 rows") {
		t.Errorf("/refresh = %q", got)
	}
	if f.Calls() != 2 {
		t.Errorf("/refresh should refetch, got %d fetches", f.Calls())
	}

	if got := s.HandleCommand(ctx, "/history"); !strings.Contains(got, "No snapshots") {
		t.Errorf("/history = %q", got)
	}
	s.RunSnapshotNow()
	if got := s.HandleCommand(ctx, "/history"); !strings.Contains(got, "2024-01-03") {
		t.Errorf("/history after snapshot = %q", got)
	}

	if got := s.HandleCommand(ctx, "hello"); !strings.Contains(got, "/breadth") {
		t.Errorf("unknown command should list help, got %q", got)
	}
}

func TestRegisterAllRejectsBadSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t, &loader.MockFetcher{CSV: sampleCSV()})
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.RegisterAll("0 30 22 * * 1-5"); err != nil {
		t.Errorf("RegisterAll: %v", err)
	}
}
