package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/logger"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound, apperror.KindReference:
		return http.StatusNotFound
	case apperror.KindPermission:
		return http.StatusForbidden
	case apperror.KindDataIntegrity:
		return http.StatusUnprocessableEntity
	case apperror.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders the last error a handler attached with c.Error and
// recovers panics as 500s.
func ErrorHandler(handler *apperror.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered", "panic", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		handler.Handle(c.Request.Context(), err)

		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
			return
		}
		status := StatusFor(appErr.Kind)
		resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
		if status < http.StatusInternalServerError {
			resp.Details = details(appErr)
		} else {
			resp.Error = "internal server error"
		}
		c.JSON(status, resp)
	}
}

func details(e *apperror.Error) map[string]interface{} {
	if e.Entity == "" && len(e.Context) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(e.Context)+2)
	for k, v := range e.Context {
		out[k] = v
	}
	if e.Entity != "" {
		out["entity"] = e.Entity
		out["entity_id"] = e.EntityID
	}
	return out
}

// RequestLogger tags each request with an id and logs it on completion.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id, ok := UserID(c); ok {
			fields = append(fields, "user_id", id)
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}
