package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists screening history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
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
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS screen_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_at       INTEGER NOT NULL,
			file_id      TEXT NOT NULL,
			trade_date   TEXT NOT NULL,
			window       INTEGER NOT NULL,
			limit_ups    INTEGER NOT NULL,
			short_movers INTEGER NOT NULL,
			vol_anomaly  INTEGER NOT NULL,
			top_code     TEXT,
			top_ratio    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_runs_run_at ON screen_runs(run_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts one run summary. RunAt defaults to now when zero.
func (r *SQLiteRecorder) RecordRun(run *ScreenRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	runAt := run.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO screen_runs
		(run_at, file_id, trade_date, window, limit_ups, short_movers, vol_anomaly, top_code, top_ratio)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		runAt.Unix(), run.FileID, run.TradeDate.Format("20060102"), run.Window,
		run.LimitUps, run.ShortMovers, run.VolAnomaly, run.TopCode, run.TopRatio,
	)
	return err
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]ScreenRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit < 1 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, run_at, file_id, trade_date, window,
		limit_ups, short_movers, vol_anomaly, top_code, top_ratio
		FROM screen_runs ORDER BY run_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ScreenRun
	for rows.Next() {
		var run ScreenRun
		var runAt int64
		var tradeDate string
		if err := rows.Scan(&run.ID, &runAt, &run.FileID, &tradeDate, &run.Window,
			&run.LimitUps, &run.ShortMovers, &run.VolAnomaly, &run.TopCode, &run.TopRatio); err != nil {
			return nil, err
		}
		run.RunAt = time.Unix(runAt, 0)
		if t, err := time.Parse("20060102", tradeDate); err == nil {
			run.TradeDate = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
