package domain

import (
	"time"
)

// Input column names. They are matched case-sensitively against the source header.
const (
	ColumnTime   = "time"
	ColumnPrice  = "Price"
	ColumnVolume = "Volume"
)

// RequiredColumns lists the columns every input table must carry
var RequiredColumns = []string{ColumnTime, ColumnPrice, ColumnVolume}

// RawObservation is a single row as delivered by a loader, before cleaning.
// Time is kept as source text so the cleaner owns date interpretation.
type RawObservation struct {
	Line   int     `json:"line"`   // 1-based source line, header excluded
	Time   string  `json:"time"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// Observation is one cleaned trading day of a single instrument
type Observation struct {
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
}

// AnalysisParams carries the four run parameters.
//
//	x: trailing window for the volume average
//	y: forward horizon for the price return
//	i: bin width for the volume deviation
//	j: bin width for the forward return
type AnalysisParams struct {
	Window         int `json:"x" yaml:"window" validate:"required,min=1"`
	Horizon        int `json:"y" yaml:"horizon" validate:"required,min=1"`
	VolumeBinWidth int `json:"i" yaml:"volume_bin_width" validate:"required,min=1"`
	PriceBinWidth  int `json:"j" yaml:"price_bin_width" validate:"required,min=1"`
}
