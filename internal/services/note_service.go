package services

import (
	"log/slog"
	"time"

	"github.com/ThomasTsao0704/stock-analysis-app/internal/cache"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/notes"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

const noteCacheKey = "notes:all"

// NoteService fronts the note store with a short-lived read cache. The
// cache entry is invalidated synchronously on every append so reads never
// diverge from the file; market-data caches are untouched, since notes and
// market tables are unrelated.
type NoteService struct {
	store  *notes.Store
	cache  *cache.TTL
	ttl    time.Duration
	logger *slog.Logger
}

// NewNoteService creates a note service around store.
func NewNoteService(store *notes.Store, ttl time.Duration, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:  store,
		cache:  cache.NewTTL(),
		ttl:    ttl,
		logger: logger.With(slog.String("component", "note_service")),
	}
}

// Append validates and persists a note, then drops the read cache entry.
func (s *NoteService) Append(note domain.AnalysisNote) error {
	if err := s.store.Append(note); err != nil {
		return err
	}
	s.cache.Invalidate(noteCacheKey)
	return nil
}

// LoadAll returns every note, served from cache within the TTL.
func (s *NoteService) LoadAll() ([]domain.AnalysisNote, error) {
	if v, ok := s.cache.Get(noteCacheKey); ok {
		return v.([]domain.AnalysisNote), nil
	}
	all, err := s.store.LoadAll()
	if err != nil {
		return nil, err
	}
	s.cache.Set(noteCacheKey, all, s.ttl)
	return all, nil
}

// ByCode returns the notes for the given codes, keyed by code.
func (s *NoteService) ByCode(codes []string) (map[string][]domain.AnalysisNote, error) {
	all, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	out := make(map[string][]domain.AnalysisNote)
	for _, n := range all {
		if want[n.Code] {
			out[n.Code] = append(out[n.Code], n)
		}
	}
	return out, nil
}
