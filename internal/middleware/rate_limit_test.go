package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrack/nutrack/backend/internal/testdb"
)

func TestRateLimiter_Middleware(t *testing.T) {
	client := testdb.Redis(t)
	gin.SetMode(gin.TestMode)
	user := uuid.New()

	limiter := NewWriteRateLimiter(client, 2)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(UserIDKey, user) })
	r.Use(limiter.RateLimitMiddleware())
	r.POST("/foods", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/foods", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/foods", nil))
		return w
	}

	w := post()
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusCreated, post().Code)

	w = post()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// Reads are not counted.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/foods", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_Windows(t *testing.T) {
	client := testdb.Redis(t)
	ctx := context.Background()

	limiter := NewRateLimiter(client, RateLimitConfig{Window: time.Hour, Limit: 1, KeyPrefix: "test"})
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	remaining, reset, err := limiter.GetRemainingRequests(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC), reset)

	allowed, _, _, err := limiter.IsAllowed(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _, _, err = limiter.IsAllowed(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different user has their own budget.
	allowed, _, _, err = limiter.IsAllowed(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, allowed)

	now = now.Add(time.Hour)
	allowed, _, _, err = limiter.IsAllowed(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewWriteRateLimiter(nil, 1)
	r := gin.New()
	r.Use(limiter.RateLimitMiddleware())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
