// Package app wires the analyzer web service: configuration, logging,
// telemetry, services, the chi router and the HTTP server lifecycle.
//
// Startup order:
//
//	1. Load configuration (defaults, YAML file, PVA_* environment)
//	2. Initialize the logger and OpenTelemetry providers
//	3. Resolve and create the data, reports and logs directories
//	4. Build services and handlers, then the router
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives,
// then drains in-flight requests within Server.ShutdownTimeout and flushes
// telemetry. Errors are returned to the caller; the package never exits
// the process.
package app
