package http

import (
	"context"

	"github.com/ThomasTsao0704/stock-analysis-app/internal/recorder"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/services"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

// ScreenServiceInterface is the screening surface the handlers depend on.
type ScreenServiceInterface interface {
	Run(ctx context.Context, req services.ScreenRequest) (*services.ScreenResult, error)
	History(ctx context.Context, req services.ScreenRequest, code string) ([]domain.DerivedRecord, error)
	RecentRuns(limit int) ([]recorder.ScreenRun, error)
}

// NoteServiceInterface is the note-log surface the handlers depend on.
type NoteServiceInterface interface {
	Append(note domain.AnalysisNote) error
	LoadAll() ([]domain.AnalysisNote, error)
}

// CompareServiceInterface is the close-comparison surface the handlers
// depend on.
type CompareServiceInterface interface {
	Compare(ctx context.Context, codes []string) (*services.CompareResult, error)
}
