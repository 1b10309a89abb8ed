package notes

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "notes.csv"), logger)
	require.NoError(t, err)
	return s
}

func validNote() domain.AnalysisNote {
	return domain.AnalysisNote{
		EntryDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Code:       "2330",
		Name:       "台積電",
		Thesis:     "先進製程需求強勁",
		Prediction: "季線之上續漲",
		Confidence: 7,
		Tags:       []string{"技術分析", "長線投資"},
		Sentiment:  domain.SentimentBullish,
		Notes:      "留意法說會",
	}
}

func TestNewStore_CreatesFileWithHeaderAndBOM(t *testing.T) {
	s := newTestStore(t)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, data[:3], "file must start with a UTF-8 BOM")
	assert.Contains(t, string(data), "股票代號")

	all, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewStore_DoesNotTruncateExistingFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(validNote()))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	reopened, err := NewStore(s.Path(), logger)
	require.NoError(t, err)

	all, err := reopened.LoadAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_AppendAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	note := validNote()
	note.TargetPrice = domain.Float(1200)

	require.NoError(t, s.Append(note))

	all, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, "2330", got.Code)
	assert.Equal(t, "台積電", got.Name)
	assert.Equal(t, note.Thesis, got.Thesis)
	assert.Equal(t, note.Prediction, got.Prediction)
	assert.Equal(t, 7, got.Confidence)
	assert.Equal(t, []string{"技術分析", "長線投資"}, got.Tags)
	assert.Equal(t, domain.SentimentBullish, got.Sentiment)
	require.NotNil(t, got.TargetPrice)
	assert.InDelta(t, 1200, *got.TargetPrice, 1e-9)
	assert.Nil(t, got.StopLoss)
	assert.Equal(t, "2024-03-15", got.EntryDate.Format("2006-01-02"))
}

func TestStore_AppendIsAppendOnly(t *testing.T) {
	s := newTestStore(t)

	first := validNote()
	require.NoError(t, s.Append(first))

	second := validNote()
	second.Code = "1101"
	second.Thesis = "水泥報價回穩"
	require.NoError(t, s.Append(second))

	all, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2330", all[0].Code, "existing rows keep their order")
	assert.Equal(t, "1101", all[1].Code)
}

func TestStore_AppendValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AnalysisNote)
	}{
		{"missing code", func(n *domain.AnalysisNote) { n.Code = "" }},
		{"missing thesis", func(n *domain.AnalysisNote) { n.Thesis = "" }},
		{"missing prediction", func(n *domain.AnalysisNote) { n.Prediction = "" }},
		{"confidence too low", func(n *domain.AnalysisNote) { n.Confidence = 0 }},
		{"confidence too high", func(n *domain.AnalysisNote) { n.Confidence = 11 }},
		{"unknown sentiment", func(n *domain.AnalysisNote) { n.Sentiment = "看不懂" }},
		{"negative target price", func(n *domain.AnalysisNote) { n.TargetPrice = domain.Float(-5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			note := validNote()
			tt.mutate(&note)

			err := s.Append(note)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

			all, loadErr := s.LoadAll()
			require.NoError(t, loadErr)
			assert.Empty(t, all, "rejected note must not reach the log")
		})
	}
}

func TestStore_CodeUppercasedOnPersist(t *testing.T) {
	s := newTestStore(t)
	note := validNote()
	note.Code = "00878b"
	require.NoError(t, s.Append(note))

	all, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "00878B", all[0].Code)
}

func TestStore_EmptyOptionalFieldsRoundTripAsNil(t *testing.T) {
	s := newTestStore(t)
	note := validNote()
	note.Tags = nil
	note.Indicators = nil
	require.NoError(t, s.Append(note))

	all, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].TargetPrice)
	assert.Nil(t, all[0].StopLoss)
	assert.Empty(t, all[0].Tags)
}
