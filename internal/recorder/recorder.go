// Package recorder keeps a history of screening runs so past results can
// be compared after the upstream file has been replaced.
package recorder

import "time"

// ScreenRun summarizes one screening pipeline run.
type ScreenRun struct {
	ID          int64
	RunAt       time.Time
	FileID      string
	TradeDate   time.Time
	Window      int
	LimitUps    int
	ShortMovers int
	VolAnomaly  int
	TopCode     string // highest volume-ratio code of the run, "" when none
	TopRatio    float64
}

// Recorder persists screening history.
type Recorder interface {
	RecordRun(run *ScreenRun) error
	RecentRuns(limit int) ([]ScreenRun, error)
	Close() error
}

// Noop discards all history. Used when no database path is configured.
type Noop struct{}

func (Noop) RecordRun(*ScreenRun) error             { return nil }
func (Noop) RecentRuns(int) ([]ScreenRun, error)    { return nil, nil }
func (Noop) Close() error                           { return nil }
