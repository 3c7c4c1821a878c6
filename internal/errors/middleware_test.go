package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMiddlewareLogsByStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusOK, "INFO"},
		{"client error", http.StatusNotFound, "WARN"},
		{"server error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, logs := newTestHandler(false)
			mw := NewErrorMiddleware(h, slogFrom(h))

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			w := httptest.NewRecorder()
			mw.Handler(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/packages?x=1", nil))

			assert.Equal(t, tt.status, w.Code)
			entry := lastLogEntry(t, logs.String())
			assert.Equal(t, "http request", entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, "x=1", entry["query"])
		})
	}
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	h, logs := newTestHandler(false)
	mw := NewErrorMiddleware(h, slogFrom(h))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("broken handler")
	})
	w := httptest.NewRecorder()
	mw.Handler(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Equal(t, "ERROR", lastLogEntry(t, logs.String())["level"])
}

func TestRecoveryMiddleware(t *testing.T) {
	h, _ := newTestHandler(false)

	panicking := RecoveryMiddleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("x")
	}))
	w := httptest.NewRecorder()
	panicking.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	fine := RecoveryMiddleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w = httptest.NewRecorder()
	fine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func slogFrom(h *ErrorHandler) *slog.Logger { return h.logger }

func lastLogEntry(t *testing.T, logs string) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(logs), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}
