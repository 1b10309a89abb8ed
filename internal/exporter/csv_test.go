package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

func testWriter(t *testing.T) *CSVWriter {
	t.Helper()
	return NewCSVWriter(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	w := testWriter(t)
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	err := w.WriteCSV(path, WriteOptions{
		Headers:   []string{"a", "b"},
		Records:   [][]string{{"1", "2"}, {"3", "4"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b"}, rows[0])
}

func TestCSVWriter_WriteScreen(t *testing.T) {
	w := testWriter(t)
	path := filepath.Join(t.TempDir(), "limit_up.csv")

	records := []domain.DerivedRecord{
		{
			MarketRecord: domain.MarketRecord{
				Code:          "2330",
				Name:          "台積電",
				Date:          time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
				Close:         domain.Float(649),
				ChangePercent: domain.Float(10),
				Volume:        domain.Float(500),
			},
			AvgVolume:   domain.Float(100),
			VolumeRatio: domain.Float(5),
		},
		{MarketRecord: domain.MarketRecord{Code: "1101"}},
	}
	require.NoError(t, w.WriteScreen(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "2330", rows[1][0])
	assert.Equal(t, "20240103", rows[1][2])
	assert.Equal(t, "5", rows[1][7])
	// Absent values stay empty, not zero.
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "", rows[2][3])
}
