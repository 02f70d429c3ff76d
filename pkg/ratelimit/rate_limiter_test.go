package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wanderly/internal/shared/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, cfg config.RateLimitConfig) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, cfg), mr
}

func baseConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 5,
		AuthRequests:    2,
		BookingRequests: 3,
	}
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	rl, _ := newLimiter(t, baseConfig())
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeAuth)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1-i, res.Remaining)
	}

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "third request within the window must be rejected")
	assert.Equal(t, 0, res.Remaining)

	other, err := rl.IsAllowed(ctx, "10.0.0.2", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.True(t, other.Allowed, "limits are per client")

	now = now.Add(61 * time.Second)
	res, err = rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "window slid past the old requests")
}

func TestRateLimiter_WhitelistAndDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig()
	cfg.WhitelistedIPs = []string{"127.0.0.1"}
	rl, mr := newLimiter(t, cfg)

	for i := 0; i < 10; i++ {
		res, err := rl.IsAllowed(ctx, "127.0.0.1", RateLimitTypeAuth)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	assert.Empty(t, mr.Keys())

	cfg.Enabled = false
	disabled, _ := newLimiter(t, cfg)
	res, err := disabled.IsAllowed(ctx, "1.2.3.4", RateLimitTypeBooking)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 3, res.Limit)
}

func TestGetRateLimitType(t *testing.T) {
	tests := map[string]RateLimitType{
		"/health":                            RateLimitTypeHealth,
		"/api/v1/auth/login":                 RateLimitTypeAuth,
		"/api/v1/admin/trips/:id/tickets":    RateLimitTypeAdmin,
		"/api/v1/trips/:id/tickets":          RateLimitTypeBooking,
		"/api/v1/trips/:id/register":         RateLimitTypeBooking,
		"/api/v1/registrations/my":           RateLimitTypeBooking,
		"/api/v1/auth/register":              RateLimitTypeAuth,
		"/api/v1/cart/items":                 RateLimitTypeCart,
		"/api/v1/orders":                     RateLimitTypeCart,
		"/api/v1/trips":                      RateLimitTypePublic,
		"/api/v1/products/:id":               RateLimitTypePublic,
		"/api/v1/notifications/unread-count": RateLimitTypeDefault,
	}
	for path, want := range tests {
		assert.Equal(t, want, getRateLimitType(path), path)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := baseConfig()
	cfg.DefaultRequests = 1
	rl, _ := newLimiter(t, cfg)

	r := gin.New()
	r.Use(Middleware(rl))
	r.GET("/whoami", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.RemoteAddr = "192.168.1.9:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
