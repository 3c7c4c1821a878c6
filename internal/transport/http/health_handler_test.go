package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"mriopack/internal/services"
)

type stubHealthService struct {
	status string
}

func (s stubHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return services.HealthStatus{Status: s.status, Version: "test"}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		status     string
		wantStatus int
	}{
		{"healthy", http.StatusOK},
		{"degraded", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			h := NewHealthHandler(stubHealthService{status: tt.status}, testLogger())
			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"`+tt.status+`"`)
		})
	}
}
