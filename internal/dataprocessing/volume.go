package dataprocessing

import (
	"fmt"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// DeriveAbnormalVolume computes, for every row, the trailing mean of volume
// over the previous window rows of the same code and the ratio of the row's
// volume to that baseline. The current row never contributes to its own
// baseline: the metric flags today against history, and including today
// would attenuate the very anomaly being tested.
//
// The baseline is defined once at least max(1, window/2) non-null volumes
// exist among the prior window rows; otherwise it is null, and so is the
// ratio. The ratio is also null when the row's own volume is null or the
// baseline is zero.
//
// The input table must already be in the (code, date) order established by
// Normalize. The function does not mutate its input and is idempotent.
func DeriveAbnormalVolume(table *domain.MarketTable, window int) (*domain.DerivedTable, error) {
	if window < 1 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("window must be positive, got %d", window), nil)
	}
	if !table.HasColumn(domain.ColVolume) {
		return nil, apperrors.NewMissingColumn(domain.ColVolume)
	}

	minPeriods := window / 2
	if minPeriods < 1 {
		minPeriods = 1
	}

	out := &domain.DerivedTable{
		Window:  window,
		Columns: append([]string(nil), table.Columns...),
		Records: make([]domain.DerivedRecord, len(table.Records)),
	}

	// Row positions per code, in table order.
	partitions := make(map[string][]int)
	for i, r := range table.Records {
		partitions[r.Code] = append(partitions[r.Code], i)
	}

	for i, r := range table.Records {
		out.Records[i] = domain.DerivedRecord{MarketRecord: r}
	}

	for _, idxs := range partitions {
		for pos, i := range idxs {
			start := pos - window
			if start < 0 {
				start = 0
			}

			var sum float64
			var count int
			for _, j := range idxs[start:pos] {
				if v := table.Records[j].Volume; v != nil {
					sum += *v
					count++
				}
			}
			if count < minPeriods {
				continue
			}

			avg := sum / float64(count)
			rec := &out.Records[i]
			rec.AvgVolume = &avg
			if rec.Volume != nil && avg != 0 {
				ratio := *rec.Volume / avg
				rec.VolumeRatio = &ratio
			}
		}
	}

	return out, nil
}
