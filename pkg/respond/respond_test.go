package respond

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     interface{}
		wantCode int
		wantBody interface{}
	}{
		{
			name:     "success response",
			code:     http.StatusOK,
			data:     map[string]string{"message": "success"},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{"message": "success"},
		},
		{
			name:     "created response",
			code:     http.StatusCreated,
			data:     map[string]int{"total": 3},
			wantCode: http.StatusCreated,
			wantBody: map[string]interface{}{"total": float64(3)}, // JSON unmarshals numbers as float64
		},
		{
			name:     "empty list",
			code:     http.StatusOK,
			data:     []string{},
			wantCode: http.StatusOK,
			wantBody: []interface{}{},
		},
		{
			name:     "unencodable value",
			code:     http.StatusOK,
			data:     math.Inf(1),
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]interface{}{"error": "failed to encode response", "code": "internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			JSON(w, r, tt.code, tt.data)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got interface{}
			err := json.NewDecoder(w.Body).Decode(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		message  string
		wantCode string
	}{
		{name: "bad request", code: http.StatusBadRequest, message: "invalid input", wantCode: "bad_request"},
		{name: "not found", code: http.StatusNotFound, message: "task not found", wantCode: "not_found"},
		{name: "unavailable", code: http.StatusServiceUnavailable, message: "backend unavailable", wantCode: "unavailable"},
		{name: "unmapped status", code: http.StatusTeapot, message: "short and stout", wantCode: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(w, r, tt.code, tt.message)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got ErrorBody
			err := json.NewDecoder(w.Body).Decode(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.message, got.Error)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
}
