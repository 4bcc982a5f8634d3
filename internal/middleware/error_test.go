package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrack/nutrack/backend/internal/apperror"
)

func errorRouter(fail error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(apperror.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(fail)
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperror.Validation("name is required"), http.StatusBadRequest, "VALIDATION"},
		{"not found", apperror.NotFound("food", "f1"), http.StatusNotFound, ""},
		{"reference", apperror.Reference("recipe", "r1"), http.StatusNotFound, "REFERENCE"},
		{"data integrity", apperror.DataIntegrity("recipe", "r1", "bad amount"), http.StatusUnprocessableEntity, ""},
		{"io", apperror.IO(errors.New("connection reset")), http.StatusInternalServerError, "IO"},
		{"plain error", errors.New("surprise"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			errorRouter(tt.err).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			if tt.code != "" {
				assert.Equal(t, tt.code, body.Code)
			}
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Error)
				assert.Nil(t, body.Details)
			}
		})
	}
}

func TestErrorHandler_Details(t *testing.T) {
	w := httptest.NewRecorder()
	err := apperror.Reference("food", "f1").WithContext("component_index", 2)
	errorRouter(err).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "food", body.Details["entity"])
	assert.Equal(t, "f1", body.Details["entity_id"])
	assert.EqualValues(t, 2, body.Details["component_index"])
}

func TestErrorHandler_Panic(t *testing.T) {
	w := httptest.NewRecorder()
	errorRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"INTERNAL"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusFor(apperror.KindPermission))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(apperror.KindRateLimit))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperror.KindInternal))
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
