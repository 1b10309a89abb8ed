package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// dateLayout is the only accepted trade-date format: an 8-digit YYYYMMDD
// numeral, as written by XQ exports.
const dateLayout = "20060102"

// ParseTradeDate parses an 8-digit YYYYMMDD numeral. Anything else returns
// the zero time; a malformed date never fails a row.
func ParseTradeDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseNumeric coerces a locale-formatted numeric cell into a float.
// Thousands separators are stripped and parenthesized negatives rewritten
// ("(56)" -> -56) before parsing. Unparseable text returns nil, never an
// error: a single malformed cell must not invalidate the table.
func ParseNumeric(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, "(", "-", 1)
	s = strings.Replace(s, ")", "", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
