package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "predefined invalid request",
			err:        ErrInvalidRequest,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
			wantMsg:    "Invalid request format",
		},
		{
			name:       "invalid parameter",
			err:        InvalidParameter("file", "../etc/passwd"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PARAMETER",
			wantMsg:    `invalid file "../etc/passwd"`,
		},
		{
			name:       "package not found",
			err:        PackageNotFound("exiobase-3.3.18-hybrid.tar"),
			wantStatus: http.StatusNotFound,
			wantCode:   "PACKAGE_NOT_FOUND",
			wantMsg:    `package "exiobase-3.3.18-hybrid.tar" not found`,
		},
		{
			name:       "rate limit",
			err:        ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "RATE_LIMIT_EXCEEDED",
			wantMsg:    "Rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestAPIErrorRender(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/packages", nil)

	require.NoError(t, render.Render(w, r, NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "bad", map[string]string{"k": "v"})))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_REQUEST", body["error_code"])
	assert.Equal(t, "bad", body["message"])
	assert.Equal(t, map[string]interface{}{"k": "v"}, body["details"])
}
