// Package services wires the pipeline stages (fetch, normalize, derive,
// screen) behind caches and exposes them to the transport layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ThomasTsao0704/stock-analysis-app/internal/cache"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/config"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/dataprocessing"
	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/fetch"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/recorder"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/screening"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// SourceFetcher resolves locators to local files.
type SourceFetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
	FetchFresh(ctx context.Context, locator string) (string, error)
}

// NoteReader supplies notes for the integrated view.
type NoteReader interface {
	LoadAll() ([]domain.AnalysisNote, error)
}

// ScreenRequest carries one screening run's parameters. Zero values fall
// back to the configured defaults.
type ScreenRequest struct {
	Locator          string
	Date             string // YYYYMMDD; empty means the latest date in the file
	Window           int
	TopN             int
	LimitUpThreshold float64
	VolumeMultiple   float64
	Refresh          bool // bypass the fetch cache
}

// ScreenResult is the outcome of one screening run.
type ScreenResult struct {
	TradeDate       string                         `json:"trade_date"`
	Window          int                            `json:"window"`
	LimitUp         []domain.DerivedRecord         `json:"limit_up"`
	ShortMovers     []domain.DerivedRecord         `json:"short_movers"`
	VolumeAnomalies []domain.DerivedRecord         `json:"volume_anomalies"`
	Notes           map[string][]domain.AnalysisNote `json:"notes,omitempty"`
}

// ScreenService runs the screening pipeline. Normalized tables are memoized
// keyed by file identity and content version, so repeated runs with
// different parameters reparse nothing.
type ScreenService struct {
	fetcher    SourceFetcher
	noteReader NoteReader
	rec        recorder.Recorder
	tables     *cache.TTL
	resultTTL  time.Duration
	defaults   config.ScreenConfig
	logger     *slog.Logger
}

// NewScreenService creates a screen service. noteReader and rec may be nil;
// the integrated view and run history are then disabled.
func NewScreenService(fetcher SourceFetcher, noteReader NoteReader, rec recorder.Recorder,
	defaults config.ScreenConfig, resultTTL time.Duration, logger *slog.Logger) *ScreenService {
	if rec == nil {
		rec = recorder.Noop{}
	}
	return &ScreenService{
		fetcher:    fetcher,
		noteReader: noteReader,
		rec:        rec,
		tables:     cache.NewTTL(),
		resultTTL:  resultTTL,
		defaults:   defaults,
		logger:     logger.With(slog.String("component", "screen_service")),
	}
}

// Run executes fetch, normalize, derive and the three screens for one
// request.
func (s *ScreenService) Run(ctx context.Context, req ScreenRequest) (*ScreenResult, error) {
	derived, err := s.deriveTable(ctx, req)
	if err != nil {
		return nil, err
	}

	day, err := s.resolveDay(derived, req.Date)
	if err != nil {
		return nil, err
	}

	params := screening.Params{
		LimitUpThreshold: req.LimitUpThreshold,
		VolumeMultiple:   req.VolumeMultiple,
		TopN:             req.TopN,
	}
	if params.LimitUpThreshold == 0 {
		params.LimitUpThreshold = s.defaults.LimitUpThreshold
	}
	if params.VolumeMultiple == 0 {
		params.VolumeMultiple = s.defaults.VolumeMultiple
	}
	if params.TopN == 0 {
		params.TopN = s.defaults.TopN
	}
	params = params.Defaults()

	rows := derived.OnDate(day)
	result := &ScreenResult{
		TradeDate:       day.Format("20060102"),
		Window:          derived.Window,
		LimitUp:         screening.LimitUp(rows, params.LimitUpThreshold),
		ShortMovers:     screening.ShortInterestMovers(rows, params.TopN),
		VolumeAnomalies: screening.VolumeAnomalies(rows, params.VolumeMultiple, params.TopN),
	}
	s.attachNotes(result)
	s.recordRun(req, day, derived.Window, result)

	s.logger.Info("screen run complete",
		slog.String("trade_date", result.TradeDate),
		slog.Int("limit_up", len(result.LimitUp)),
		slog.Int("short_movers", len(result.ShortMovers)),
		slog.Int("volume_anomalies", len(result.VolumeAnomalies)))
	return result, nil
}

// History returns one code's full derived history, oldest first.
func (s *ScreenService) History(ctx context.Context, req ScreenRequest, code string) ([]domain.DerivedRecord, error) {
	if code == "" {
		return nil, apperrors.NewValidationError("code is required", nil)
	}
	derived, err := s.deriveTable(ctx, req)
	if err != nil {
		return nil, err
	}
	return derived.History(code), nil
}

// RecentRuns returns the latest recorded run summaries.
func (s *ScreenService) RecentRuns(limit int) ([]recorder.ScreenRun, error) {
	return s.rec.RecentRuns(limit)
}

func (s *ScreenService) deriveTable(ctx context.Context, req ScreenRequest) (*domain.DerivedTable, error) {
	window := req.Window
	if window == 0 {
		window = s.defaults.Window
	}
	if window < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("window must be positive, got %d", window), nil)
	}

	var path string
	var err error
	if req.Refresh {
		path, err = s.fetcher.FetchFresh(ctx, req.Locator)
	} else {
		path, err = s.fetcher.Fetch(ctx, req.Locator)
	}
	if err != nil {
		return nil, err
	}

	table, err := s.normalizedTable(req.Locator, path)
	if err != nil {
		return nil, err
	}
	return dataprocessing.DeriveAbnormalVolume(table, window)
}

// normalizedTable memoizes Normalize keyed by the locator's file identifier
// and the local copy's content version (size and mtime), so a refreshed
// download never serves a stale parse.
func (s *ScreenService) normalizedTable(locator, path string) (*domain.MarketTable, error) {
	id, err := fetch.ExtractFileID(locator)
	if err != nil {
		return nil, err
	}

	key := "table:" + id
	if info, statErr := os.Stat(path); statErr == nil {
		key = fmt.Sprintf("table:%s:%d:%d", id, info.Size(), info.ModTime().UnixNano())
	}

	if v, ok := s.tables.Get(key); ok {
		return v.(*domain.MarketTable), nil
	}
	table, err := dataprocessing.Normalize(path)
	if err != nil {
		return nil, err
	}
	s.tables.Set(key, table, s.resultTTL)
	return table, nil
}

func (s *ScreenService) resolveDay(derived *domain.DerivedTable, date string) (time.Time, error) {
	if date != "" {
		day := dataprocessing.ParseTradeDate(date)
		if day.IsZero() {
			return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("invalid date %q, want YYYYMMDD", date), nil)
		}
		return day, nil
	}

	var latest time.Time
	for _, r := range derived.Records {
		if r.HasDate() && r.Date.After(latest) {
			latest = r.Date
		}
	}
	if latest.IsZero() {
		return time.Time{}, apperrors.NewUnreadableTable("table contains no parseable dates", nil)
	}
	return latest, nil
}

// attachNotes joins the user's analysis notes against every code appearing
// in a screen list.
func (s *ScreenService) attachNotes(result *ScreenResult) {
	if s.noteReader == nil {
		return
	}
	all, err := s.noteReader.LoadAll()
	if err != nil || len(all) == 0 {
		if err != nil {
			s.logger.Warn("loading notes for integrated view failed", slog.String("error", err.Error()))
		}
		return
	}

	byCode := make(map[string][]domain.AnalysisNote)
	for _, n := range all {
		byCode[n.Code] = append(byCode[n.Code], n)
	}

	joined := make(map[string][]domain.AnalysisNote)
	for _, list := range [][]domain.DerivedRecord{result.LimitUp, result.ShortMovers, result.VolumeAnomalies} {
		for _, r := range list {
			if ns, ok := byCode[r.Code]; ok {
				joined[r.Code] = ns
			}
		}
	}
	if len(joined) > 0 {
		result.Notes = joined
	}
}

func (s *ScreenService) recordRun(req ScreenRequest, day time.Time, window int, result *ScreenResult) {
	id, err := fetch.ExtractFileID(req.Locator)
	if err != nil {
		return
	}

	run := &recorder.ScreenRun{
		FileID:      id,
		TradeDate:   day,
		Window:      window,
		LimitUps:    len(result.LimitUp),
		ShortMovers: len(result.ShortMovers),
		VolAnomaly:  len(result.VolumeAnomalies),
	}
	if len(result.VolumeAnomalies) > 0 {
		top := result.VolumeAnomalies[0]
		run.TopCode = top.Code
		if top.VolumeRatio != nil {
			run.TopRatio = *top.VolumeRatio
		}
	}
	if err := s.rec.RecordRun(run); err != nil {
		s.logger.Warn("recording screen run failed", slog.String("error", err.Error()))
	}
}
