package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func request(method, path, ip string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":1234"
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(SecurityHeaders(okHandler), request(http.MethodGet, "/", "10.0.0.1"))
	assert.Equal(t, "nosniff", rec.Header().Get(headerXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(headerXFrameOptions))
	assert.NotEmpty(t, rec.Header().Get(headerStrictTransportSecurity))
}

func TestLoginRateLimit(t *testing.T) {
	h := LoginRateLimit(false)(okHandler)

	for i := 0; i < loginRateLimitBurst; i++ {
		assert.Equal(t, http.StatusOK, serve(h, request(http.MethodPost, "/api/auth/signin", "10.0.0.1")).Code)
	}
	rec := serve(h, request(http.MethodPost, "/api/auth/signin", "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many login attempts. Please try again later."}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, serve(h, request(http.MethodPost, "/api/auth/signin", "10.0.0.2")).Code, "other IPs unaffected")
	assert.Equal(t, http.StatusOK, serve(h, request(http.MethodGet, "/api/moods", "10.0.0.1")).Code, "other paths unaffected")
}

func TestGlobalRateLimit_TrustProxy(t *testing.T) {
	h := GlobalRateLimit(true)(okHandler)

	blocked := 0
	for i := 0; i < globalRateLimitBurst+5; i++ {
		req := request(http.MethodGet, "/api/moods", "10.0.0.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		if serve(h, req).Code == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Positive(t, blocked)

	req := request(http.MethodGet, "/api/moods", "10.0.0.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.8")
	assert.Equal(t, http.StatusOK, serve(h, req).Code, "limited by forwarded address")
}

func TestChatRateLimit(t *testing.T) {
	budget := NewChatBudget()
	h := ChatRateLimit(false, budget)(okHandler)

	for i := 0; i < chatRateLimitBurst; i++ {
		assert.Equal(t, http.StatusOK, serve(h, request(http.MethodPost, "/api/chat", "10.0.0.1")).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(h, request(http.MethodPost, "/api/chat-simple", "10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(h, request(http.MethodGet, "/api/chat/history", "10.0.0.1")).Code)

	assert.False(t, budget.Allow("10.0.0.1"), "budget is shared with other callers")
	assert.True(t, budget.Allow("10.0.0.2"))
}

func TestKeyedLimiter_DropsIdleEntries(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	l := newKeyedLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.size())

	now = now.Add(limiterTTL + time.Minute)
	assert.True(t, l.Allow("c"))
	assert.Equal(t, 1, l.size())
}

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := RedisRateLimit(client, false)(okHandler)

	for i := 0; i < RateLimitMaxRequests; i++ {
		require.Equal(t, http.StatusOK, serve(h, request(http.MethodGet, "/api/moods", "10.0.0.9")).Code)
	}
	ttl := mr.TTL(RateLimitKeyPrefix + "10.0.0.9")
	assert.Equal(t, RateLimitWindow, ttl)

	assert.Equal(t, http.StatusTooManyRequests, serve(h, request(http.MethodGet, "/api/moods", "10.0.0.9")).Code)
	assert.True(t, mr.Exists(BlockedIPKeyPrefix+"10.0.0.9"))
	assert.Equal(t, http.StatusTooManyRequests, serve(h, request(http.MethodGet, "/health", "10.0.0.9")).Code)

	mr.FastForward(BlockedIPDuration + RateLimitWindow)
	assert.Equal(t, http.StatusOK, serve(h, request(http.MethodGet, "/api/moods", "10.0.0.9")).Code)
}

func TestRedisRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	h := RedisRateLimit(client, false)(okHandler)
	assert.Equal(t, http.StatusOK, serve(h, request(http.MethodGet, "/api/moods", "10.0.0.9")).Code)
}

func TestRequestLogger(t *testing.T) {
	var seen string
	h := RequestLogger(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := serve(h, request(http.MethodGet, "/x", "10.0.0.1"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(okHandler)

	req := request(http.MethodOptions, "/api/moods", "10.0.0.1")
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = request(http.MethodGet, "/api/moods", "10.0.0.1")
	req.Header.Set("Origin", "https://evil.example")
	rec = serve(h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
