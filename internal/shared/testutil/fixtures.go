package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// PriceRow is one input line of a price/volume fixture
type PriceRow struct {
	Time   string
	Price  float64
	Volume float64
}

// ScenarioRows is the four-day series used throughout the tests:
// x=2 gives an average of 1050 on day 3, y=1 a 5% return on day 1.
var ScenarioRows = []PriceRow{
	{"01/01/2024", 100, 1000},
	{"02/01/2024", 105, 1100},
	{"03/01/2024", 98, 900},
	{"04/01/2024", 110, 1300},
}

// PriceVolumeCSV renders rows as CSV text with a time,Price,Volume header
func PriceVolumeCSV(rows ...PriceRow) []byte {
	lines := make([][]string, 0, len(rows)+1)
	lines = append(lines, []string{"time", "Price", "Volume"})
	for _, r := range rows {
		lines = append(lines, []string{r.Time, fmt.Sprint(r.Price), fmt.Sprint(r.Volume)})
	}
	return CSV(lines...)
}

// CSV renders arbitrary lines, header included
func CSV(lines ...[]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(lines)
	return buf.Bytes()
}

// SeriesRows generates n consecutive daily rows starting 1 Jan 2024 with
// deterministic, varied prices and volumes.
func SeriesRows(n int) []PriceRow {
	rows := make([]PriceRow, n)
	for d := 0; d < n; d++ {
		rows[d] = PriceRow{
			Time:   fmt.Sprintf("%02d/%02d/%d", d%28+1, d/28%12+1, 2024+d/336),
			Price:  100 + float64((d*13)%17) - 8,
			Volume: 1000 + float64((d*29)%41)*10,
		}
	}
	return rows
}

// WriteFile writes data under t.TempDir and returns the path
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
