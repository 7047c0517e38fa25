package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetches (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			source      TEXT,
			row_count   INTEGER,
			duration_ms INTEGER,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetches_ts ON fetches(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cache_clears (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			origin    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clears_ts ON cache_clears(timestamp)`,

		`CREATE TABLE IF NOT EXISTS breadth_snapshots (
			date           TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			close          REAL,
			ma20           REAL,
			ma60           REAL,
			ma200          REAL,
			oscillator     REAL,
			summation      REAL,
			summation_mean REAL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(evt *FetchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetches
		(timestamp, source, row_count, duration_ms, error)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Source, evt.Rows, evt.Duration.Milliseconds(), evt.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordClear(evt *ClearEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cache_clears (timestamp, origin) VALUES (?,?)`,
		time.Now().Unix(), evt.Trigger,
	)
	return err
}

// RecordSnapshot upserts the reading for the snapshot's trading date.
func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO breadth_snapshots
		(date, timestamp, close, ma20, ma60, ma200, oscillator, summation, summation_mean)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		snap.Date.Format("2006-01-02"), time.Now().Unix(),
		snap.Close, snap.MA20, snap.MA60, snap.MA200,
		snap.Oscillator, snap.Summation, snap.SummationMean,
	)
	return err
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (r *SQLiteRecorder) RecentSnapshots(limit int) ([]Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT date, close, ma20, ma60, ma200, oscillator, summation, summation_mean
		FROM breadth_snapshots ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var date string
		if err := rows.Scan(&date, &s.Close, &s.MA20, &s.MA60, &s.MA200,
			&s.Oscillator, &s.Summation, &s.SummationMean); err != nil {
			return nil, err
		}
		if s.Date, err = time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("snapshot date %q: %w", date, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
