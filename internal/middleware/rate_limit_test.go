package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPRateLimiterReturnsRateLimitedEnvelope(t *testing.T) {
	limiter := NewIPRateLimiterWithMaxEntries(1, time.Minute, 32)
	handler := limiter.Middleware("Muitas requisições")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/importacoes/", nil)
	req1.RemoteAddr = "127.0.0.1:12345"
	handler.ServeHTTP(first, req1)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request status 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/importacoes/", nil)
	req2.RemoteAddr = "127.0.0.1:12345"
	handler.ServeHTTP(second, req2)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request status 429, got %d", second.Code)
	}
	body := second.Body.String()
	if !strings.Contains(body, `"code":"rate_limited"`) {
		t.Fatalf("expected rate_limited error code in response body, got %s", body)
	}
	assert.Contains(t, body, `"detail":"Muitas requisições"`)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestIPRateLimiterSeparatesClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.False(t, limiter.Allow("10.0.0.1"))
}

func TestIPRateLimiterBoundsTrackedClients(t *testing.T) {
	limiter := NewIPRateLimiterWithMaxEntries(5, time.Minute, 2)
	limiter.Allow("a")
	limiter.Allow("b")
	limiter.Allow("c")
	assert.LessOrEqual(t, limiter.tracked(), 2)
	assert.True(t, limiter.Allow("c"))
}

func TestRedisRateLimiter(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewRedisRateLimiter(client, "test:ratelimit", 2, time.Minute)
	require.NoError(t, err)

	handler := limiter.Middleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/pacientes/convites/enviar/", nil)
		req.RemoteAddr = "192.168.0.10:5000"
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRedisRateLimiterFailsClosed(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewRedisRateLimiter(client, "test:ratelimit", 1, time.Second)
	require.NoError(t, err)

	srv.Close()
	assert.False(t, limiter.Allow(context.Background(), "ip-1"))
}

func TestNewRedisRateLimiterValidates(t *testing.T) {
	_, err := NewRedisRateLimiter(nil, "", 1, time.Second)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })
	_, err = NewRedisRateLimiter(client, "", 0, time.Second)
	assert.Error(t, err)
}
