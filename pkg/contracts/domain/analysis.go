package domain

import (
	"fmt"
	"time"
)

// Output sheet names
const (
	SheetData           = "Data"
	SheetFrequencyTable = "Frequency_Table"
)

// DataColumns holds the header of the enriched "Data" table for one parameter set
type DataColumns struct {
	Time            string
	Volume          string
	VolumeAvg       string
	VolumeDeviation string
	VolumeRange     string
	Price           string
	ForwardReturn   string
	PriceRange      string
}

// NewDataColumns derives the column names from the run parameters
func NewDataColumns(p AnalysisParams) DataColumns {
	deviation := fmt.Sprintf("Volume_vs_%d_day_avg_%%", p.Window)
	forward := fmt.Sprintf("Price_%d_day_forward_return_%%", p.Horizon)
	return DataColumns{
		Time:            ColumnTime,
		Volume:          ColumnVolume,
		VolumeAvg:       fmt.Sprintf("Volume_%d_day_avg", p.Window),
		VolumeDeviation: deviation,
		VolumeRange:     fmt.Sprintf("%s_Range_%d", deviation, p.VolumeBinWidth),
		Price:           ColumnPrice,
		ForwardReturn:   forward,
		PriceRange:      fmt.Sprintf("%s_Range_%d", forward, p.PriceBinWidth),
	}
}

// Ordered returns the header in output order
func (c DataColumns) Ordered() []string {
	return []string{
		c.Time,
		c.Volume, c.VolumeAvg, c.VolumeDeviation, c.VolumeRange,
		c.Price, c.ForwardReturn, c.PriceRange,
	}
}

// RunSummary describes one analysis run for logs and API responses
type RunSummary struct {
	RunID           string         `json:"run_id"`
	Source          string         `json:"source"`
	Params          AnalysisParams `json:"params"`
	InputRows       int            `json:"input_rows"`
	RetainedRows    int            `json:"retained_rows"`
	DroppedRows     map[string]int `json:"dropped_rows"`
	PairedRows      int            `json:"paired_rows"`
	VolumeBins      int            `json:"volume_bins"`
	PriceBins       int            `json:"price_bins"`
	Warnings        int            `json:"warnings"`
	FirstDate       *time.Time     `json:"first_date,omitempty"`
	LastDate        *time.Time     `json:"last_date,omitempty"`
	DurationSeconds float64        `json:"duration_seconds"`
}
