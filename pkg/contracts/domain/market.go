package domain

import (
	"time"
)

// Source column headers as they appear in XQ end-of-day exports. The
// normalizer maps these onto MarketRecord fields; screening code uses them
// to check which optional columns a table actually carried.
const (
	ColDate          = "日期"
	ColCode          = "代碼"
	ColName          = "商品"
	ColOpen          = "開盤價"
	ColHigh          = "最高價"
	ColLow           = "最低價"
	ColClose         = "收盤價"
	ColChangePercent = "漲跌幅"
	ColAmplitude     = "振幅"
	ColVolume        = "成交量"
	ColInnerVolume   = "內盤量"
	ColOuterVolume   = "外盤量"
	ColOpenVolume    = "開盤量"
	ColDayTrade      = "當日沖銷張數"
	ColHigh52W       = "52H價"
	ColAvgPrice      = "均價"
	ColAvgPrice01    = "均價[0+1]"
	ColAvgPrice12    = "均價[1+2]"
	ColAvgPrice123   = "均價[1+2+3]"
	ColAvgPrice012   = "均價[0+1+2]"
	ColShortBalance  = "融券餘額張數"
	ColShortChange   = "融券增減張數"
	ColValue         = "成交金額"
	ColTurnoverRate  = "週轉率"
)

// MarketRecord represents one entity's end-of-day market data row.
// The code is kept as the raw source string so leading zeros and
// non-numeric suffixes survive. Numeric fields are pointers: nil means the
// source column was absent or the cell did not parse as a number.
type MarketRecord struct {
	Code string    `json:"code" validate:"required"`
	Name string    `json:"name"`
	Date time.Time `json:"date"` // zero when the source value was not a valid YYYYMMDD numeral

	Open          *float64 `json:"open,omitempty"`
	High          *float64 `json:"high,omitempty"`
	Low           *float64 `json:"low,omitempty"`
	Close         *float64 `json:"close,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Amplitude     *float64 `json:"amplitude,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
	InnerVolume   *float64 `json:"inner_volume,omitempty"`
	OuterVolume   *float64 `json:"outer_volume,omitempty"`
	OpenVolume    *float64 `json:"open_volume,omitempty"`
	DayTrade      *float64 `json:"day_trade,omitempty"`
	High52W       *float64 `json:"high_52w,omitempty"`
	AvgPrice      *float64 `json:"avg_price,omitempty"`
	AvgPrice01    *float64 `json:"avg_price_0_1,omitempty"`
	AvgPrice12    *float64 `json:"avg_price_1_2,omitempty"`
	AvgPrice123   *float64 `json:"avg_price_1_2_3,omitempty"`
	AvgPrice012   *float64 `json:"avg_price_0_1_2,omitempty"`
	ShortBalance  *float64 `json:"short_balance,omitempty"`
	ShortChange   *float64 `json:"short_change,omitempty"`
	Value         *float64 `json:"value,omitempty"`
	TurnoverRate  *float64 `json:"turnover_rate,omitempty"`
}

// HasDate reports whether the row carries a parseable trade date.
func (r MarketRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// MarketTable is the normalized form of one uploaded market-data file.
// Records are sorted by (Code, Date) ascending; rows with a zero Date sort
// first within their code group and are skipped by date-indexed views.
type MarketTable struct {
	Columns []string       `json:"columns"` // source headers recognized during normalization
	Records []MarketRecord `json:"records"`
}

// HasColumn reports whether the source file carried the named column.
func (t *MarketTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Dates returns the distinct non-zero trade dates in the table, ascending.
func (t *MarketTable) Dates() []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range t.Records {
		if !r.HasDate() || seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		dates = append(dates, r.Date)
	}
	sortTimes(dates)
	return dates
}

// LatestDate returns the most recent trade date in the table, or the zero
// time when no row carries a parseable date.
func (t *MarketTable) LatestDate() time.Time {
	dates := t.Dates()
	if len(dates) == 0 {
		return time.Time{}
	}
	return dates[len(dates)-1]
}

func sortTimes(ts []time.Time) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j].Before(ts[j-1]); j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}

// DerivedRecord extends MarketRecord with the rolling-baseline volume
// metrics produced by the abnormal-volume derivation.
type DerivedRecord struct {
	MarketRecord

	// AvgVolume is the mean volume over the trailing window for the same
	// code, excluding the current day. Nil until enough prior observations
	// exist for the minimum-periods policy.
	AvgVolume *float64 `json:"avg_volume,omitempty"`
	// VolumeRatio is Volume / AvgVolume; nil when the baseline is nil or zero.
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`
}

// DerivedTable is a MarketTable after abnormal-volume derivation with a
// specific trailing window.
type DerivedTable struct {
	Window  int             `json:"window"`
	Columns []string        `json:"columns"`
	Records []DerivedRecord `json:"records"`
}

// HasColumn reports whether the source file carried the named column.
func (t *DerivedTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// OnDate returns the records whose trade date equals day.
func (t *DerivedTable) OnDate(day time.Time) []DerivedRecord {
	var out []DerivedRecord
	for _, r := range t.Records {
		if r.HasDate() && r.Date.Equal(day) {
			out = append(out, r)
		}
	}
	return out
}

// History returns all records for one code in ascending date order.
func (t *DerivedTable) History(code string) []DerivedRecord {
	var out []DerivedRecord
	for _, r := range t.Records {
		if r.Code == code {
			out = append(out, r)
		}
	}
	return out
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 {
	return &v
}
