package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/twse"
)

// maxCompareCodes caps one comparison request.
const maxCompareCodes = 5

// CloseSeries is one stock's trailing close prices.
type CloseSeries struct {
	Code   string            `json:"code"`
	Points []twse.ClosePoint `json:"points"`
}

// CompareResult holds the per-stock close series for a comparison.
type CompareResult struct {
	Months int           `json:"months"`
	Series []CloseSeries `json:"series"`
}

// CompareService fetches trailing monthly closes from the exchange API
// for side-by-side comparison. Per-stock fetch failures degrade to an
// empty series rather than failing the whole request.
type CompareService struct {
	client *twse.Client
	months int
	logger *slog.Logger
}

// NewCompareService creates a compare service fetching the trailing
// months of daily closes per stock.
func NewCompareService(client *twse.Client, months int, logger *slog.Logger) *CompareService {
	if months < 1 {
		months = 3
	}
	return &CompareService{
		client: client,
		months: months,
		logger: logger.With(slog.String("component", "compare_service")),
	}
}

// Compare fetches close series for up to maxCompareCodes stock codes.
func (s *CompareService) Compare(ctx context.Context, codes []string) (*CompareResult, error) {
	cleaned := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		cleaned = append(cleaned, c)
	}
	if len(cleaned) == 0 {
		return nil, apperrors.NewValidationError("at least one stock code is required", nil)
	}
	if len(cleaned) > maxCompareCodes {
		return nil, apperrors.NewValidationError("too many stock codes, maximum is 5", nil)
	}

	result := &CompareResult{
		Months: s.months,
		Series: make([]CloseSeries, len(cleaned)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, code := range cleaned {
		g.Go(func() error {
			points, err := s.client.RecentCloses(gctx, code, s.months)
			if err != nil {
				s.logger.Warn("close series fetch failed",
					slog.String("code", code),
					slog.String("error", err.Error()))
				points = nil
			}
			mu.Lock()
			result.Series[i] = CloseSeries{Code: code, Points: points}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Series, func(i, j int) bool {
		return result.Series[i].Code < result.Series[j].Code
	})
	return result, nil
}
