package loader

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"MarketBreadth/internal/model"
	"MarketBreadth/internal/recorder"
)

// Loader fetches and parses the series, serving it from a TTL cache.
type Loader struct {
	Fetcher  Fetcher
	Cache    *Cache
	Recorder recorder.Recorder

	group singleflight.Group
}

// NewLoader creates a new Loader.
func NewLoader(fetcher Fetcher, cache *Cache, rec recorder.Recorder) *Loader {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Loader{Fetcher: fetcher, Cache: cache, Recorder: rec}
}

// Load returns the cached table or fetches a fresh one. Concurrent misses
// share a single network call. Failures are returned and never cached.
func (l *Loader) Load(ctx context.Context) (*model.Table, error) {
	if t, ok := l.Cache.Get(); ok {
		return t, nil
	}

	v, err, _ := l.group.Do("table", func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Table), nil
}

func (l *Loader) fetch(ctx context.Context) (*model.Table, error) {
	gen := l.Cache.Generation()
	start := time.Now()
	evt := &recorder.FetchEvent{Source: l.Fetcher.Name()}
	defer func() {
		evt.Duration = time.Since(start)
		if err := l.Recorder.RecordFetch(evt); err != nil {
			log.Printf("[ERROR] record fetch: %v", err)
		}
	}()

	data, err := l.Fetcher.FetchCSV(ctx)
	if err != nil {
		evt.Err = err.Error()
		return nil, fmt.Errorf("fetch %s: %w", l.Fetcher.Name(), err)
	}
	rows, err := ParseCSVBytes(data)
	if err != nil {
		evt.Err = err.Error()
		return nil, fmt.Errorf("parse %s: %w", l.Fetcher.Name(), err)
	}
	evt.Rows = len(rows)

	t := &model.Table{
		Source:    l.Fetcher.Name(),
		FetchedAt: time.Now(),
		Rows:      rows,
	}
	// A Clear issued while this fetch was in flight wins.
	l.Cache.PutAt(t, gen)
	log.Printf("[INFO] loaded %d rows from %s in %v", len(rows), l.Fetcher.Name(), time.Since(start).Round(time.Millisecond))
	return t, nil
}

// Clear invalidates the cache entirely; the next Load re-issues the fetch.
func (l *Loader) Clear(trigger string) {
	l.Cache.Clear()
	l.group.Forget("table")
	log.Printf("[INFO] cache cleared (%s)", trigger)
	if err := l.Recorder.RecordClear(&recorder.ClearEvent{Trigger: trigger}); err != nil {
		log.Printf("[ERROR] record cache clear: %v", err)
	}
}
