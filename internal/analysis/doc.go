// Package analysis computes the joint distribution of volume deviation and
// forward price return for a single instrument's daily price/volume series.
//
// # Pipeline
//
// A run is a single deterministic pass over the input:
//
//  1. Clean: drop zero-volume rows and unparseable dates, sort by time
//  2. RollingVolumeAverage: trailing mean of the previous x volumes
//  3. VolumeDeviation: percent deviation of volume from that mean
//  4. ForwardReturn: percent price change y rows ahead
//  5. RangeBinner: fixed-width, zero-anchored bins for both measures
//  6. Aggregate: crosstab of (volume bin, price bin) counts
//
// Derived values that cannot be computed (not enough history, last rows
// without a forward price) are carried as absent Optional values and never
// take part in binning or counting. Division by a zero average or a zero
// price yields an infinite or NaN value, which is kept as-is in the row and
// excluded from binning.
//
// # Diagnostics
//
// The package does not log. Non-fatal data-quality events are collected in
// Diagnostics and, when an Observer is supplied, reported to it as they
// happen.
//
// # Usage Example
//
//	params := domain.AnalysisParams{Window: 5, Horizon: 5, VolumeBinWidth: 10, PriceBinWidth: 5}
//	result, err := analysis.Run(raw, params, analysis.WithObserver(obs))
//	if err != nil {
//	    return err
//	}
//	for _, row := range result.Matrix.Rows {
//	    fmt.Println(row.Label)
//	}
package analysis
