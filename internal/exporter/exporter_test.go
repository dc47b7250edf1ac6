package exporter

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pvcli/internal/analysis"
	"pvcli/internal/config"
	"pvcli/internal/shared/testutil"
	"pvcli/pkg/contracts/domain"
)

func scenarioResult(t *testing.T) *analysis.Result {
	t.Helper()
	raw := []domain.RawObservation{
		{Line: 1, Time: "01/01/2024", Price: 100, Volume: 1000},
		{Line: 2, Time: "02/01/2024", Price: 105, Volume: 1100},
		{Line: 3, Time: "03/01/2024", Price: 98, Volume: 900},
		{Line: 4, Time: "04/01/2024", Price: 110, Volume: 1300},
	}
	params := domain.AnalysisParams{Window: 2, Horizon: 1, VolumeBinWidth: 10, PriceBinWidth: 5}
	res, err := analysis.Run(raw, params)
	require.NoError(t, err)
	return res
}

func TestWorkbookWriter_Write(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	res := scenarioResult(t)

	var buf bytes.Buffer
	require.NoError(t, NewWorkbookWriter(logger).Write(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{domain.SheetData, domain.SheetFrequencyTable}, f.GetSheetList())

	rows, err := f.GetRows(domain.SheetData, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, res.Columns.Ordered(), rows[0])

	// d1 has no average, deviation or volume range
	assert.Equal(t, "45292", rows[1][0])
	assert.Equal(t, "1000", rows[1][1])
	assert.Empty(t, rows[1][2])
	assert.Empty(t, rows[1][4])
	assert.Equal(t, "100", rows[1][5])
	assert.Equal(t, "5", rows[1][6])
	assert.Equal(t, "5 to 10", rows[1][7])

	assert.Equal(t, "1050", rows[3][2])
	assert.Equal(t, "-20 to -10", rows[3][4])
	assert.Equal(t, "10 to 15", rows[3][7])

	// d4 ends after the price column: no forward return
	assert.Len(t, rows[4], 6)

	freq, err := f.GetRows(domain.SheetFrequencyTable)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{res.Columns.PriceRange, "10 to 15"},
		{res.Columns.VolumeRange},
		{"-20 to -10", "1"},
	}, freq)
}

func TestWorkbookWriter_WriteFile(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "out", config.WorkbookFileName)

	require.NoError(t, NewWorkbookWriter(logger).WriteFile(path, scenarioResult(t)))

	assert.True(t, config.FileExists(path))
	assert.True(t, logs.HasAttr("path", path))
}

func TestWorkbookWriter_EmptyResult(t *testing.T) {
	params := domain.AnalysisParams{Window: 5, Horizon: 5, VolumeBinWidth: 1, PriceBinWidth: 1}
	res, err := analysis.Run(nil, params)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWorkbookWriter(nil).Write(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(domain.SheetData)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	freq, err := f.GetRows(domain.SheetFrequencyTable)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{res.Columns.PriceRange}, {res.Columns.VolumeRange}}, freq)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_ExportResult(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(&config.Paths{ReportsDir: dir})
	res := scenarioResult(t)

	files, err := w.ExportResult(res, "prices")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prices_data.csv"), files.Data)
	assert.Equal(t, filepath.Join(dir, "prices_frequency.csv"), files.Frequency)

	data := readCSV(t, files.Data)
	require.Len(t, data, 5)
	assert.Equal(t, res.Columns.Ordered(), data[0])
	assert.Equal(t, []string{"2024-01-01", "1000", "", "", "", "100", "5", "5 to 10"}, data[1])
	assert.Equal(t, "-20 to -10", data[3][4])
	assert.Equal(t, []string{"2024-01-04", "1300", "1000", "30", "30 to 40", "110", "", ""}, data[4])

	freq := readCSV(t, files.Frequency)
	assert.Equal(t, [][]string{
		{res.Columns.VolumeRange, "10 to 15"},
		{"-20 to -10", "1"},
	}, freq)
}

func TestCSVWriter_AbsolutePath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "run")
	w := NewCSVWriter(&config.Paths{ReportsDir: "/does/not/matter"})

	files, err := w.ExportResult(scenarioResult(t), base)
	require.NoError(t, err)
	assert.Equal(t, base+"_data.csv", files.Data)
	assert.True(t, config.FileExists(files.Frequency))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"10 to 20", "10 to 20"},
		{"-20 to -10", "-20 to -10"},
		{"-inf", "-inf"},
		{"=SUM(A1:A2)", "'=SUM(A1:A2)"},
		{"+1", "'+1"},
		{"@cmd", "'@cmd"},
		{"-cmd", "'-cmd"},
		{"-", "'-"},
		{"\tx", "'\tx"},
		{"\rx", "'\rx"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestCellValues(t *testing.T) {
	assert.Nil(t, cellValue(analysis.None[float64]()))
	assert.Equal(t, 1.5, cellValue(analysis.Some(1.5)))
	assert.Equal(t, "inf", cellValue(analysis.Some(math.Inf(1))))
	assert.Equal(t, "-inf", cellValue(analysis.Some(math.Inf(-1))))
	assert.Equal(t, "nan", cellValue(analysis.Some(math.NaN())))

	assert.Equal(t, "", formatOptional(analysis.None[float64]()))
	assert.Equal(t, "-14.25", formatOptional(analysis.Some(-14.25)))
	assert.Equal(t, "inf", formatFloat(math.Inf(1)))

	assert.Nil(t, labelValue(analysis.None[analysis.BinLabel]()))
	assert.Equal(t, "0 to 5", labelValue(analysis.Some(analysis.BinLabel{Lower: 0, Width: 5})))
}

func TestCSVWriter_ExportMatrix(t *testing.T) {
	dir := t.TempDir()
	m, _, err := analysis.AggregateText(
		[]string{"10 to 20", "=cmd", "10 to 20", ""},
		[]string{"0 to 5", "0 to 5", "-5 to 0", "0 to 5"},
		nil,
	)
	require.NoError(t, err)

	path, err := NewCSVWriter(&config.Paths{ReportsDir: dir}).ExportMatrix("recount_frequency.csv", "Volume_Range", m)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recount_frequency.csv"), path)

	assert.Equal(t, [][]string{
		{"Volume_Range", "-5 to 0", "0 to 5"},
		{"10 to 20", "1", "1"},
		{"'=cmd", "0", "1"},
	}, readCSV(t, path))
}
