package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) (*ErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewErrorHandler(logger, includeStack), &buf
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    map[string]interface{}
	}{
		{
			name:       "resource not found",
			err:        NewNotFoundError("sectors"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeResourceNotFound,
			wantExt:    map[string]interface{}{"resource": "sectors", "error_type": "not_found"},
		},
		{
			name:       "resource not unique",
			err:        fmt.Errorf("load: %w", NewNotUniqueError("production", 2)),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeResourceNotUnique,
			wantExt:    map[string]interface{}{"resource": "production"},
		},
		{
			name:       "integrity",
			err:        NewIntegrityError("technosphere", "md5 mismatch"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeIntegrity,
			wantExt:    map[string]interface{}{"error_type": "integrity"},
		},
		{
			name:       "missing manifest",
			err:        NewConversionError(ErrTypeMissingManifest, "no datapackage.json", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeConversion,
		},
		{
			name:       "order mismatch carries stage and version",
			err:        NewOrderMismatch(nil).WithStage("technosphere").WithVersion("3.3.18 hybrid"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeConversion,
			wantExt:    map[string]interface{}{"stage": "technosphere", "version": "3.3.18 hybrid"},
		},
		{
			name:       "api error",
			err:        InvalidParameter("name", ""),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantExt:    map[string]interface{}{"error_code": "INVALID_PARAMETER"},
		},
		{
			name:       "missing file",
			err:        fmt.Errorf("open: %w", fs.ErrNotExist),
			wantStatus: http.StatusNotFound,
			wantType:   TypePackageNotFound,
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(false)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/packages/a.tar/resources/x", nil)

			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/packages/a.tar/resources/x", body["instance"])
			for k, v := range tt.wantExt {
				assert.Equal(t, v, body[k], k)
			}
			_, hasStack := body["stack"]
			assert.False(t, hasStack)
		})
	}
}

func TestErrorHandlerNilError(t *testing.T) {
	h, logs := newTestHandler(false)
	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logs.Len())
}

func TestErrorHandlerLogLevel(t *testing.T) {
	h, logs := newTestHandler(false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	h.HandleError(httptest.NewRecorder(), r, NewNotFoundError("products"))
	assert.Contains(t, logs.String(), `"level":"WARN"`)

	logs.Reset()
	h.HandleError(httptest.NewRecorder(), r, NewInternalError("zero output", nil))
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestErrorHandlerIncludeStack(t *testing.T) {
	h, _ := newTestHandler(true)
	w := httptest.NewRecorder()
	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))

	stack, ok := decodeProblem(t, w)["stack"].(string)
	require.True(t, ok)
	assert.Contains(t, stack, "goroutine")
}

func TestStatusForConversionError(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrTypeNotFound, http.StatusNotFound},
		{ErrTypeNotUnique, http.StatusUnprocessableEntity},
		{ErrTypeIntegrity, http.StatusUnprocessableEntity},
		{ErrTypeNotATar, http.StatusInternalServerError},
		{ErrTypeConfig, http.StatusInternalServerError},
		{ErrTypeSchemaMismatch, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForConversionError(&ConversionError{Type: tt.errType}))
		})
	}
}

func TestErrorHandlerHandlePanic(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{"without stack", false},
		{"with stack", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, logs := newTestHandler(tt.includeStack)
			w := httptest.NewRecorder()
			h.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/panic", nil), "kaboom")

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, TypeInternal, body["type"])
			_, hasPanic := body["panic"]
			assert.Equal(t, tt.includeStack, hasPanic)
			assert.Contains(t, logs.String(), "panic recovered")
		})
	}
}

func TestErrorHandlerNotFoundAndMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/packages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}
