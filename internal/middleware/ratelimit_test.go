package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit_PerUploaderBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(1, 1)

	// Mimic the upload route: an auth step sets the user ID, then the
	// limiter keys on it; anonymous requests fall back to the client IP
	router := gin.New()
	router.POST("/api/videos", func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(AuthContextKey, user)
		}
	}, RateLimit(rl), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	upload := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/videos", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	// One uploader exhausting their bucket must not block another
	assert.Equal(t, http.StatusCreated, upload("admin-1"))
	assert.Equal(t, http.StatusTooManyRequests, upload("admin-1"))
	assert.Equal(t, http.StatusCreated, upload("admin-2"))

	// Anonymous requests share the client IP bucket
	assert.Equal(t, http.StatusCreated, upload(""))
	assert.Equal(t, http.StatusTooManyRequests, upload(""))
}

func TestRateLimit_ExceededResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewRateLimiter(1, 1)

	router := gin.New()
	router.POST("/api/videos", RateLimit(rl), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/videos", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/videos", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}
