package config

import "time"

// Application constants
const (
	AppName   = "pvcli"
	EnvPrefix = "PVA"

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/pvcli.log"

	// Outputs
	WorkbookFileName   = "result.xlsx"
	DataCSVSuffix      = "_data.csv"
	FrequencyCSVSuffix = "_frequency.csv"

	// Analysis
	DefaultPreviewRows = 5

	// HTTP
	DefaultUploadMaxBytes int64 = 32 << 20 // 32MB
	DefaultRequestTimeout       = 2 * time.Minute
	DefaultRateLimitRPS         = 5.0
	DefaultRateLimitBurst       = 10

	APIBasePath     = "/api"
	AnalyzeEndpoint = "/api/analyze"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
