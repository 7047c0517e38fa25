package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"MarketBreadth/internal/calculator"
	"MarketBreadth/internal/loader"
	"MarketBreadth/internal/model"
	"MarketBreadth/internal/notifier"
	"MarketBreadth/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily breadth snapshot and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Loader   *loader.Loader
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Window   int // rolling window for the summation mean
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, l *loader.Loader, n notifier.Notifier, rec recorder.Recorder, window int) *Scheduler {
	if n == nil {
		n = notifier.LogNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Loader:   l,
		Notifier: n,
		Recorder: rec,
		Window:   window,
		Ctx:      ctx,
	}
}

// RegisterAll registers the snapshot task.
func (s *Scheduler) RegisterAll(snapshotCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSnapshotNow executes the snapshot task immediately.
func (s *Scheduler) RunSnapshotNow() {
	s.snapshotTask()
}

// snapshotTask forces a fresh fetch, records the latest reading and sends
// the summary.
func (s *Scheduler) snapshotTask() {
	log.Println("[INFO] running snapshot task")
	s.Loader.Clear("cron")
	table, err := s.Loader.Load(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] snapshot load: %v", err)
		s.trySend(fmt.Sprintf("❌ Breadth snapshot failed: %v", err))
		return
	}

	snap, err := BuildSnapshot(table, s.Window)
	if err != nil {
		log.Printf("[ERROR] snapshot: %v", err)
		return
	}
	if err := s.Recorder.RecordSnapshot(snap); err != nil {
		log.Printf("[ERROR] record snapshot: %v", err)
	}
	s.trySend(notifier.FormatBreadthSummary(snap, s.Window))
}

// BuildSnapshot extracts the latest reading of a table together with the
// rolling mean of the summation index.
func BuildSnapshot(table *model.Table, window int) (*recorder.Snapshot, error) {
	last, ok := table.Last()
	if !ok {
		return nil, errors.New("empty table")
	}
	mean, _ := calculator.SMA(table.Column(model.ColSummation), window)
	return &recorder.Snapshot{
		Date:          last.Date,
		Close:         last.Close,
		MA20:          last.MA20,
		MA60:          last.MA60,
		MA200:         last.MA200,
		Oscillator:    last.Oscillator,
		Summation:     last.Summation,
		SummationMean: mean,
	}, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd, _, _ := strings.Cut(strings.ToLower(command), "@")
	switch cmd {
	case "/breadth", "/start":
		table, err := s.Loader.Load(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Load failed: %v", err)
		}
		snap, err := BuildSnapshot(table, s.Window)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatBreadthSummary(snap, s.Window)
	case "/refresh":
		s.Loader.Clear("telegram")
		table, err := s.Loader.Load(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Reload failed: %v", err)
		}
		return fmt.Sprintf("✅ Reloaded %d rows from %s", table.Len(), table.Source)
	case "/history":
		snaps, err := s.Recorder.RecentSnapshots(10)
		if err != nil {
			return fmt.Sprintf("❌ History unavailable: %v", err)
		}
		return notifier.FormatHistory(snaps)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
