package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// numericColumns maps the known numeric source headers onto MarketRecord
// fields. Columns outside this set are ignored.
var numericColumns = map[string]func(*domain.MarketRecord, *float64){
	domain.ColOpen:          func(r *domain.MarketRecord, v *float64) { r.Open = v },
	domain.ColHigh:          func(r *domain.MarketRecord, v *float64) { r.High = v },
	domain.ColLow:           func(r *domain.MarketRecord, v *float64) { r.Low = v },
	domain.ColClose:         func(r *domain.MarketRecord, v *float64) { r.Close = v },
	domain.ColChangePercent: func(r *domain.MarketRecord, v *float64) { r.ChangePercent = v },
	domain.ColAmplitude:     func(r *domain.MarketRecord, v *float64) { r.Amplitude = v },
	domain.ColVolume:        func(r *domain.MarketRecord, v *float64) { r.Volume = v },
	domain.ColInnerVolume:   func(r *domain.MarketRecord, v *float64) { r.InnerVolume = v },
	domain.ColOuterVolume:   func(r *domain.MarketRecord, v *float64) { r.OuterVolume = v },
	domain.ColOpenVolume:    func(r *domain.MarketRecord, v *float64) { r.OpenVolume = v },
	domain.ColDayTrade:      func(r *domain.MarketRecord, v *float64) { r.DayTrade = v },
	domain.ColHigh52W:       func(r *domain.MarketRecord, v *float64) { r.High52W = v },
	domain.ColAvgPrice:      func(r *domain.MarketRecord, v *float64) { r.AvgPrice = v },
	domain.ColAvgPrice01:    func(r *domain.MarketRecord, v *float64) { r.AvgPrice01 = v },
	domain.ColAvgPrice12:    func(r *domain.MarketRecord, v *float64) { r.AvgPrice12 = v },
	domain.ColAvgPrice123:   func(r *domain.MarketRecord, v *float64) { r.AvgPrice123 = v },
	domain.ColAvgPrice012:   func(r *domain.MarketRecord, v *float64) { r.AvgPrice012 = v },
	domain.ColShortBalance:  func(r *domain.MarketRecord, v *float64) { r.ShortBalance = v },
	domain.ColShortChange:   func(r *domain.MarketRecord, v *float64) { r.ShortChange = v },
	domain.ColValue:         func(r *domain.MarketRecord, v *float64) { r.Value = v },
	domain.ColTurnoverRate:  func(r *domain.MarketRecord, v *float64) { r.TurnoverRate = v },
}

// Normalize reads a market-data file and returns a normalized table sorted
// by (code, date) ascending. The file may be a delimited text export in
// Big5 or UTF-8, or a spreadsheet archive; the format is sniffed from the
// leading bytes.
func Normalize(path string) (*domain.MarketTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewUnreadableTable("read file", err)
	}

	var rows [][]string
	if isSpreadsheet(data) {
		rows, err = spreadsheetRows(data)
	} else {
		rows, err = delimitedRows(data)
	}
	if err != nil {
		return nil, err
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(table.Records, func(i, j int) bool {
		a, b := table.Records[i], table.Records[j]
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Date.Before(b.Date)
	})

	slog.Debug("normalized market table",
		slog.String("path", path),
		slog.Int("rows", len(table.Records)),
		slog.Int("columns", len(table.Columns)))
	return table, nil
}

func delimitedRows(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, apperrors.NewUnreadableTable("no supported encoding decoded the file", err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewUnreadableTable("parse delimited text", err)
	}
	return rows, nil
}

func spreadsheetRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewUnreadableTable("open spreadsheet archive", err)
	}
	defer f.Close()

	// XQ exports are single-sheet; take the first sheet carrying any rows.
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err == nil && len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, apperrors.NewUnreadableTable("spreadsheet contains no data", nil)
}

func buildTable(rows [][]string) (*domain.MarketTable, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewUnreadableTable("table has no rows", nil)
	}

	headers := make([]string, len(rows[0]))
	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		headers[i] = h
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	dateIdx, ok := index[domain.ColDate]
	if !ok {
		return nil, apperrors.NewMissingColumn(domain.ColDate)
	}
	codeIdx, ok := index[domain.ColCode]
	if !ok {
		return nil, apperrors.NewMissingColumn(domain.ColCode)
	}
	nameIdx, hasName := index[domain.ColName]

	columns := []string{domain.ColDate, domain.ColCode}
	if hasName {
		columns = append(columns, domain.ColName)
	}
	for _, h := range headers {
		if _, known := numericColumns[h]; known {
			columns = append(columns, h)
		}
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	table := &domain.MarketTable{Columns: columns}
	for _, row := range rows[1:] {
		code := cell(row, codeIdx)
		if code == "" {
			continue
		}

		rec := domain.MarketRecord{
			Code: code,
			Date: ParseTradeDate(cell(row, dateIdx)),
		}
		if hasName {
			rec.Name = cell(row, nameIdx)
		}
		for header, set := range numericColumns {
			idx, present := index[header]
			if !present {
				continue
			}
			set(&rec, ParseNumeric(cell(row, idx)))
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}
