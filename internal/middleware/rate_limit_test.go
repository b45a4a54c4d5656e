package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedEcho(rl *RateLimiter) *echo.Echo {
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	}, rl.Limit())
	return e
}

func doRequest(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 3)
	defer rl.Stop()
	e := newLimitedEcho(rl)

	for i := 0; i < 3; i++ {
		rec := doRequest(e, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_BlocksWhenBurstExhausted(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 2)
	defer rl.Stop()
	e := newLimitedEcho(rl)

	for i := 0; i < 2; i++ {
		rec := doRequest(e, "10.0.0.2")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(e, "10.0.0.2")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate-limit")
}

func TestRateLimiter_IndependentPerIP(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()
	e := newLimitedEcho(rl)

	rec := doRequest(e, "10.0.0.3")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, "10.0.0.3")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doRequest(e, "10.0.0.4")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_AllowDirect(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 2)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}
