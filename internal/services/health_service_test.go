package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"mriopack/internal/infrastructure"
)

func TestHealthCheck(t *testing.T) {
	collector, err := infrastructure.NewSystemMetricsCollector(noop.NewMeterProvider().Meter("test"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		dir        string
		collector  *infrastructure.SystemMetricsCollector
		wantStatus string
		wantCheck  string
	}{
		{"healthy", t.TempDir(), collector, "healthy", "ready"},
		{"missing packages dir", filepath.Join(t.TempDir(), "missing"), nil, "degraded", "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.2.3", tt.dir, tt.collector, discardLogger())
			status := hs.HealthCheck(context.Background())

			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Equal(t, tt.wantCheck, status.Checks["packages_dir"].Status)
			assert.Equal(t, tt.collector != nil, status.Runtime != nil)
		})
	}
}
