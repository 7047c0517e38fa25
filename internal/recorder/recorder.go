package recorder

import (
	"time"

	"github.com/guregu/null/v6"
)

// FetchEvent records one network fetch of the series.
type FetchEvent struct {
	Source   string
	Rows     int
	Duration time.Duration
	Err      string // empty on success
}

// ClearEvent records a manual or scheduled cache invalidation.
type ClearEvent struct {
	Trigger string // "web", "telegram", "cron"
}

// Snapshot holds the latest breadth reading taken by the daily job.
type Snapshot struct {
	Date          time.Time
	Close         null.Float
	MA20          null.Float
	MA60          null.Float
	MA200         null.Float
	Oscillator    null.Float
	Summation     null.Float
	SummationMean null.Float
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecordClear(evt *ClearEvent) error
	RecordSnapshot(snap *Snapshot) error
	RecentSnapshots(limit int) ([]Snapshot, error)
	Close() error
}
