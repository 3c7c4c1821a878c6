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

func TestProblemDetailsJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("resource", "production").
		WithExtension("status", 999)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "Not Found", body["title"])
	assert.Equal(t, float64(http.StatusNotFound), body["status"], "extensions cannot override standard fields")
	assert.Equal(t, "/x", body["instance"])
	assert.Equal(t, "production", body["resource"])
	_, hasDetail := body["detail"]
	assert.False(t, hasDetail)
}

func TestProblemDetailsRender(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	pd := &ProblemDetails{Type: TypeIntegrity, Title: "Integrity Check Failed", Status: http.StatusUnprocessableEntity}
	pd.WithExtension("resource", "technosphere")
	require.NoError(t, render.Render(w, r, pd))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"resource":"technosphere"`)
}
