// Package screening selects and ranks entities from one trading day's
// derived records: limit-up candidates, short-interest movers and
// abnormal-volume names.
package screening

import (
	"sort"

	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// Params are the scalar screening parameters. Zero values are replaced by
// the defaults the original screens shipped with.
type Params struct {
	LimitUpThreshold float64 // percent change at or above which a day counts as limit-up
	VolumeMultiple   float64 // minimum volume ratio for the abnormal-volume screen
	TopN             int     // list length for the ranked screens
}

// Defaults fills zero-valued fields.
func (p Params) Defaults() Params {
	if p.LimitUpThreshold == 0 {
		p.LimitUpThreshold = 9.9
	}
	if p.VolumeMultiple == 0 {
		p.VolumeMultiple = 2.0
	}
	if p.TopN == 0 {
		p.TopN = 10
	}
	return p
}

// LimitUp returns the records whose percent change meets or exceeds the
// threshold, sorted by (percent change, volume) descending. Records with a
// null percent change never qualify.
func LimitUp(day []domain.DerivedRecord, threshold float64) []domain.DerivedRecord {
	var out []domain.DerivedRecord
	for _, r := range day {
		if r.ChangePercent != nil && *r.ChangePercent >= threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if *a.ChangePercent != *b.ChangePercent {
			return *a.ChangePercent > *b.ChangePercent
		}
		return deref(a.Volume) > deref(b.Volume)
	})
	return out
}

// ShortInterestMovers ranks records by short-interest delta descending and
// returns the top n. Records without a short-interest delta are dropped.
func ShortInterestMovers(day []domain.DerivedRecord, n int) []domain.DerivedRecord {
	var out []domain.DerivedRecord
	for _, r := range day {
		if r.ShortChange != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].ShortChange > *out[j].ShortChange
	})
	return truncate(out, n)
}

// VolumeAnomalies returns the top n records whose volume ratio meets or
// exceeds multiple, descending by ratio. Records lacking a baseline or a
// ratio are excluded by construction.
func VolumeAnomalies(day []domain.DerivedRecord, multiple float64, n int) []domain.DerivedRecord {
	var out []domain.DerivedRecord
	for _, r := range day {
		if r.VolumeRatio != nil && r.AvgVolume != nil && *r.VolumeRatio >= multiple {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].VolumeRatio > *out[j].VolumeRatio
	})
	return truncate(out, n)
}

func truncate(rs []domain.DerivedRecord, n int) []domain.DerivedRecord {
	if n > 0 && len(rs) > n {
		return rs[:n]
	}
	return rs
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
