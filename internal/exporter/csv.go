package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// screenHeader is the column order of an exported screen list.
var screenHeader = []string{
	"代碼", "商品", "日期", "收盤價", "漲跌幅", "成交量", "均量", "量比", "融券增減張數",
}

// CSVWriter writes CSV exports.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures one CSV write.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for spreadsheet compatibility
}

// WriteCSV writes headers and records to path, creating parent
// directories as needed.
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	w.logger.Info("csv written",
		slog.String("path", path),
		slog.Int("records", len(options.Records)))
	return nil
}

// WriteScreen exports one screen list to path.
func (w *CSVWriter) WriteScreen(path string, records []domain.DerivedRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		date := ""
		if r.HasDate() {
			date = r.Date.Format("20060102")
		}
		rows = append(rows, []string{
			r.Code,
			r.Name,
			date,
			formatFloat(r.Close),
			formatFloat(r.ChangePercent),
			formatFloat(r.Volume),
			formatFloat(r.AvgVolume),
			formatFloat(r.VolumeRatio),
			formatFloat(r.ShortChange),
		})
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   screenHeader,
		Records:   rows,
		BOMPrefix: true,
	})
}

// formatFloat renders an optional numeric; nil becomes an empty cell.
func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
