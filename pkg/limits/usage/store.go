package usage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DayFormat is the key format for daily usage rows.
const DayFormat = "2006-01-02"

// Daily is the usage counters for one region on one day.
type Daily struct {
	Day      string `json:"day"`
	Region   string `json:"region"`
	Requests int64  `json:"requests"`
	Failures int64  `json:"failures"`
}

// Store persists per-day, per-region request counters in SQLite. It is
// safe for concurrent use; SQLite only supports a single writer, so
// writes are serialized through one connection.
type Store struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once
}

// Open opens (and if needed creates) the usage database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("usage db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize usage schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_daily (
		day      TEXT NOT NULL,
		region   TEXT NOT NULL,
		requests INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (day, region)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record counts one proxied call for the given region on today's row.
func (s *Store) Record(ctx context.Context, region string, failed bool) error {
	return s.RecordAt(ctx, region, failed, time.Now())
}

// RecordAt counts one proxied call on the day containing at.
func (s *Store) RecordAt(ctx context.Context, region string, failed bool, at time.Time) error {
	var failure int64
	if failed {
		failure = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_daily (day, region, requests, failures)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (day, region) DO UPDATE SET
			requests = requests + 1,
			failures = failures + excluded.failures
	`, at.Format(DayFormat), region, failure)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// Day returns the counters for one day, all regions.
func (s *Store) Day(ctx context.Context, day string) ([]*Daily, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, region, requests, failures
		FROM usage_daily
		WHERE day = ?
		ORDER BY region
	`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	return scanDaily(rows)
}

// Range returns the counters for the inclusive day range, newest first.
func (s *Store) Range(ctx context.Context, from, to string) ([]*Daily, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, region, requests, failures
		FROM usage_daily
		WHERE day >= ? AND day <= ?
		ORDER BY day DESC, region
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	return scanDaily(rows)
}

// Cleanup deletes rows older than the given day and returns how many
// were removed.
func (s *Store) Cleanup(ctx context.Context, olderThan string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM usage_daily WHERE day < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up usage: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database. Safe to call more than once.
func (s *Store) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		closeErr = s.db.Close()
	})
	return closeErr
}

func scanDaily(rows *sql.Rows) ([]*Daily, error) {
	var out []*Daily
	for rows.Next() {
		var d Daily
		if err := rows.Scan(&d.Day, &d.Region, &d.Requests, &d.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage rows: %w", err)
	}
	return out, nil
}
