// Package services implements the application layer between the transports
// (CLI and HTTP) and the analysis core.
//
// AnalysisService runs one analysis end to end: it validates the run
// parameters, loads the input table, runs the pipeline and renders the
// results as a workbook, a CSV pair or a JSON preview. It also recounts the
// frequency table from a previously exported Data table.
//
// The analysis core never logs. Its data-quality warnings reach the log
// through an Observer installed by the service, and every run is traced and
// recorded in the analysis metrics.
//
// HealthService reports liveness and build information for /api/health.
package services
