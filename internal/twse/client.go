// Package twse fetches monthly closing prices from the TWSE exchange's
// STOCK_DAY endpoint, feeding the multi-stock comparison view.
package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ThomasTsao0704/stock-analysis-app/internal/dataprocessing"
)

// ClosePoint is one day's closing price for a stock. Close is nil when the
// source cell did not parse.
type ClosePoint struct {
	Date  time.Time `json:"date"`
	Close *float64  `json:"close,omitempty"`
}

// Client queries the TWSE exchange report API.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for baseURL (the STOCK_DAY endpoint).
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With(slog.String("component", "twse_client")),
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.client = client
	return c
}

// stockDayResponse mirrors the STOCK_DAY JSON payload.
type stockDayResponse struct {
	Stat   string     `json:"stat"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// MonthlyCloses returns the daily closes of stockNo for one month. A
// rejected request (bad status or non-OK stat) yields an empty series, not
// an error; only transport failures are errors.
func (c *Client) MonthlyCloses(ctx context.Context, stockNo string, year int, month time.Month) ([]ClosePoint, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("response", "json")
	q.Set("date", fmt.Sprintf("%04d%02d01", year, month))
	q.Set("stockNo", stockNo)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %04d-%02d: %w", stockNo, year, month, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("twse rejected request",
			slog.String("stock_no", stockNo),
			slog.String("status", resp.Status))
		return nil, nil
	}

	var payload stockDayResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Stat != "OK" {
		c.logger.Warn("twse returned non-OK stat",
			slog.String("stock_no", stockNo),
			slog.String("stat", payload.Stat))
		return nil, nil
	}

	dateIdx, closeIdx := fieldIndexes(payload.Fields)
	if dateIdx < 0 || closeIdx < 0 {
		return nil, nil
	}

	var points []ClosePoint
	for _, row := range payload.Data {
		if len(row) <= dateIdx || len(row) <= closeIdx {
			continue
		}
		date, ok := parseROCDate(row[dateIdx])
		if !ok {
			continue
		}
		points = append(points, ClosePoint{
			Date:  date,
			Close: dataprocessing.ParseNumeric(row[closeIdx]),
		})
	}
	return points, nil
}

// RecentCloses returns the closes of stockNo over the trailing months,
// oldest first. Months are fetched concurrently; a month that fails is
// logged and skipped so one bad month cannot sink the series.
func (c *Client) RecentCloses(ctx context.Context, stockNo string, months int) ([]ClosePoint, error) {
	if months < 1 {
		months = 3
	}

	results := make([][]ClosePoint, months)
	g, ctx := errgroup.WithContext(ctx)
	now := time.Now()

	for i := 0; i < months; i++ {
		g.Go(func() error {
			target := now.AddDate(0, -i, 0)
			points, err := c.MonthlyCloses(ctx, stockNo, target.Year(), target.Month())
			if err != nil {
				c.logger.Warn("skipping month",
					slog.String("stock_no", stockNo),
					slog.Int("year", target.Year()),
					slog.Int("month", int(target.Month())),
					slog.String("error", err.Error()))
				return nil
			}
			results[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []ClosePoint
	for _, points := range results {
		merged = append(merged, points...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged, nil
}

func fieldIndexes(fields []string) (dateIdx, closeIdx int) {
	dateIdx, closeIdx = -1, -1
	for i, f := range fields {
		switch strings.TrimSpace(f) {
		case "日期":
			dateIdx = i
		case "收盤價":
			closeIdx = i
		}
	}
	return dateIdx, closeIdx
}

// parseROCDate parses the "113/01/02" Republic-of-China-era dates STOCK_DAY
// returns, converting the era year to the Gregorian calendar.
func parseROCDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 1911 {
		year += 1911
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
