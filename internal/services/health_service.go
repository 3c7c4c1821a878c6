package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"mriopack/internal/infrastructure"
)

// HealthService reports the state of the package server
type HealthService struct {
	version     string
	packagesDir string
	collector   *infrastructure.SystemMetricsCollector
	startTime   time.Time
	logger      *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Version   string                      `json:"version"`
	Uptime    string                      `json:"uptime"`
	GoVersion string                      `json:"go_version"`
	Runtime   *infrastructure.SystemStats `json:"runtime,omitempty"`
	Checks    map[string]ServiceHealth    `json:"checks"`
}

// ServiceHealth represents one health check
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. collector may be nil, in which
// case no runtime stats are reported.
func NewHealthService(version, packagesDir string, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:     version,
		packagesDir: packagesDir,
		collector:   collector,
		startTime:   time.Now(),
		logger:      infrastructure.WithComponent(logger, "health"),
	}
}

// HealthCheck returns the overall status. The server is degraded when the
// packages directory cannot be read.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		GoVersion: runtime.Version(),
		Checks: map[string]ServiceHealth{
			"packages_dir": hs.checkPackagesDir(),
		},
	}
	if hs.collector != nil {
		status.Runtime = hs.collector.GetCurrentStats(ctx)
	}

	for name, check := range status.Checks {
		if check.Status != "ready" {
			status.Status = "degraded"
			hs.logger.WarnContext(ctx, "health check failed",
				slog.String("check", name),
				slog.String("message", check.Message),
			)
		}
	}
	return status
}

func (hs *HealthService) checkPackagesDir() ServiceHealth {
	info, err := os.Stat(hs.packagesDir)
	if err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("packages directory unavailable: %v", err)}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("%s is not a directory", hs.packagesDir)}
	}
	return ServiceHealth{Status: "ready"}
}
