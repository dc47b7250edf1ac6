package exporter

import (
	"math"
	"strconv"
	"time"

	"pvcli/internal/analysis"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// excelEpoch is day zero of the 1900 date system, valid after 1900-03-01
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// unboundedText renders values a spreadsheet cannot store as numbers
func unboundedText(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return "nan", true
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	}
	return "", false
}

// cellValue is the workbook value of an optional number: nil when absent
func cellValue(v analysis.Optional[float64]) any {
	f, ok := v.Get()
	if !ok {
		return nil
	}
	if s, unbounded := unboundedText(f); unbounded {
		return s
	}
	return f
}

// labelValue is the workbook value of an optional bin label
func labelValue(v analysis.Optional[analysis.BinLabel]) any {
	l, ok := v.Get()
	if !ok {
		return nil
	}
	return Sanitize(l.String())
}

// formatFloat formats a number for CSV output without losing precision
func formatFloat(f float64) string {
	if s, unbounded := unboundedText(f); unbounded {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(v analysis.Optional[float64]) string {
	f, ok := v.Get()
	if !ok {
		return ""
	}
	return formatFloat(f)
}

func formatLabel(v analysis.Optional[analysis.BinLabel]) string {
	l, ok := v.Get()
	if !ok {
		return ""
	}
	return Sanitize(l.String())
}

// timeLayout picks a date-only layout when every timestamp is midnight
func timeLayout(rows []analysis.Row) string {
	for _, r := range rows {
		if h, m, s := r.Time.Clock(); h != 0 || m != 0 || s != 0 {
			return dateTimeLayout
		}
	}
	return dateLayout
}

func excelSerial(t time.Time) float64 {
	return t.Sub(excelEpoch).Hours() / 24
}

// Sanitize neutralizes text a spreadsheet would otherwise evaluate as a
// formula. Negative numbers such as "-20 to -10" are left alone.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '@', '\t', '\r':
		return "'" + s
	case '-':
		if len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
			return s
		}
		if s == "-inf" {
			return s
		}
		return "'" + s
	}
	return s
}
