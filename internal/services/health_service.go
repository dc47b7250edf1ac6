package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"pvcli/internal/config"
	"pvcli/pkg/contracts"
)

// Health states
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    float64                  `json:"uptime_seconds"`
	Runtime   map[string]any           `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth `json:"checks,omitempty"`
}

// ServiceHealth represents one dependency check
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports liveness plus the state of the reports directory,
// which the CLI and CSV exports write into
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Seconds(),
		Runtime: map[string]any{
			"go_version":  runtime.Version(),
			"goroutines":  runtime.NumGoroutine(),
			"api_version": contracts.APIVersion,
		},
		Checks: map[string]ServiceHealth{},
	}

	if hs.paths != nil {
		check := directoryHealth(hs.paths.ReportsDir)
		status.Checks["reports_dir"] = check
		if check.Status != StatusOK {
			status.Status = StatusDegraded
		}
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status))
	return status
}

func directoryHealth(dir string) ServiceHealth {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return ServiceHealth{Status: StatusDegraded, Message: err.Error()}
	case !info.IsDir():
		return ServiceHealth{Status: StatusDegraded, Message: dir + " is not a directory"}
	}
	return ServiceHealth{Status: StatusOK}
}
