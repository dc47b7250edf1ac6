// Package exporter writes analysis results as an Excel workbook with the
// "Data" and "Frequency_Table" sheets, or as a pair of CSV files.
//
// Text cells that a spreadsheet would evaluate as a formula are prefixed
// with an apostrophe before they are written.
package exporter
