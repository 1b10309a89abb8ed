package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNormalize_UTF8CSV(t *testing.T) {
	csvData := "日期,代碼,商品,收盤價,漲跌幅,成交量\n" +
		"20240103,2330,台積電,\"1,100\",2.5,\"35,000\"\n" +
		"20240102,2330,台積電,593,(1.5),30000\n" +
		"20240102,1101,台泥,35.2,0.5,5000\n"

	table, err := Normalize(writeTempFile(t, []byte(csvData)))
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	// Sorted by (code, date) ascending.
	assert.Equal(t, "1101", table.Records[0].Code)
	assert.Equal(t, "2330", table.Records[1].Code)
	assert.Equal(t, "20240102", table.Records[1].Date.Format("20060102"))
	assert.Equal(t, "20240103", table.Records[2].Date.Format("20060102"))

	// Locale-formatted numerics coerced.
	r := table.Records[2]
	require.NotNil(t, r.Close)
	assert.InDelta(t, 1100, *r.Close, 1e-9)
	require.NotNil(t, r.Volume)
	assert.InDelta(t, 35000, *r.Volume, 1e-9)

	// Parenthesized negative.
	require.NotNil(t, table.Records[1].ChangePercent)
	assert.InDelta(t, -1.5, *table.Records[1].ChangePercent, 1e-9)

	assert.True(t, table.HasColumn(domain.ColVolume))
	assert.False(t, table.HasColumn(domain.ColShortChange))
}

func TestNormalize_Big5CSV(t *testing.T) {
	content := "日期,代碼,商品,收盤價\n20240102,2330,台積電,593\n"
	table, err := Normalize(writeTempFile(t, big5Bytes(t, content)))
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "台積電", table.Records[0].Name)
}

func TestNormalize_UTF8BOMCSV(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("日期,代碼,收盤價\n20240102,2330,593\n")...)
	table, err := Normalize(writeTempFile(t, data))
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "2330", table.Records[0].Code)
}

func TestNormalize_SemicolonDelimiter(t *testing.T) {
	data := "日期;代碼;收盤價\n20240102;2330;593\n20240103;2330;600\n"
	table, err := Normalize(writeTempFile(t, []byte(data)))
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	require.NotNil(t, table.Records[0].Close)
	assert.InDelta(t, 593, *table.Records[0].Close, 1e-9)
}

func TestNormalize_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"日期", "代碼", "商品", "收盤價", "成交量"},
		{"20240102", "2330", "台積電", "593", "30,000"},
		{"20240103", "2330", "台積電", "600", "32,000"},
	}
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	path := filepath.Join(t.TempDir(), "market.xlsx")
	require.NoError(t, f.SaveAs(path))

	table, err := Normalize(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	require.NotNil(t, table.Records[0].Volume)
	assert.InDelta(t, 30000, *table.Records[0].Volume, 1e-9)
}

func TestNormalize_MissingDateColumn(t *testing.T) {
	_, err := Normalize(writeTempFile(t, []byte("代碼,收盤價\n2330,593\n")))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingColumn))
	assert.Contains(t, err.Error(), domain.ColDate)
}

func TestNormalize_MissingCodeColumn(t *testing.T) {
	_, err := Normalize(writeTempFile(t, []byte("日期,收盤價\n20240102,593\n")))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingColumn))
	assert.Contains(t, err.Error(), domain.ColCode)
}

func TestNormalize_MissingNameColumnDefaultsEmpty(t *testing.T) {
	table, err := Normalize(writeTempFile(t, []byte("日期,代碼,收盤價\n20240102,2330,593\n")))
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "", table.Records[0].Name)
}

func TestNormalize_InvalidDateBecomesNullRowRetained(t *testing.T) {
	data := "日期,代碼,收盤價\nbaddate,2330,593\n20240102,2330,600\n"
	table, err := Normalize(writeTempFile(t, []byte(data)))
	require.NoError(t, err)
	require.Len(t, table.Records, 2, "row with unparseable date must be retained")

	assert.False(t, table.Records[0].HasDate(), "zero-date row sorts first within its code")
	assert.True(t, table.Records[1].HasDate())

	dates := table.Dates()
	require.Len(t, dates, 1, "date-indexed views must skip null dates")
}

func TestNormalize_UnparseableNumberBecomesNull(t *testing.T) {
	data := "日期,代碼,收盤價\n20240102,2330,N/A\n"
	table, err := Normalize(writeTempFile(t, []byte(data)))
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Nil(t, table.Records[0].Close)
}

func TestNormalize_SkipsRowsWithoutCode(t *testing.T) {
	data := "日期,代碼,收盤價\n20240102,2330,593\n20240102,,100\n"
	table, err := Normalize(writeTempFile(t, []byte(data)))
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)
}

func TestNormalize_CodeKeptAsRawString(t *testing.T) {
	data := "日期,代碼,收盤價\n20240102,0050,100\n"
	table, err := Normalize(writeTempFile(t, []byte(data)))
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "0050", table.Records[0].Code, "leading zeros must survive")
}

func TestNormalize_UndecodableFile(t *testing.T) {
	_, err := Normalize(writeTempFile(t, []byte{0xFF, 0xFF, 0x80, 0x00, 0xFF}))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnreadable))
}

func TestNormalize_FileNotFound(t *testing.T) {
	_, err := Normalize(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnreadable))
}
