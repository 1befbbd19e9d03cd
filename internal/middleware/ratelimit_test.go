package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, request("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1002"), "burst is per address, not per port")
	assert.Equal(t, http.StatusNoContent, request("10.0.0.2:1000"))
}

func TestIPRateLimiterPrunesIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Inf, 1)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return start }

	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(uuid.NewString())
	}
	assert.Len(t, limiter.ips, cleanupThreshold+1)

	limiter.now = func() time.Time { return start.Add(maxIdleAge + time.Minute) }
	limiter.GetLimiter("fresh")
	assert.Len(t, limiter.ips, 1)
}

func TestUserIDContext(t *testing.T) {
	_, ok := GetUserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetUserIDFromContext(WithUserID(t.Context(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Nil(t, GetAuthenticatedUser(t.Context()))
}
