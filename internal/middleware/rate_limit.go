package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is satisfied by both the in-process and the Redis limiter.
type RateLimiter interface {
	Middleware(message string) func(http.Handler) http.Handler
}

type rateWindow struct {
	count  int
	endsAt time.Time
}

type IPRateLimiter struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	maxEntries int
	windows    map[string]rateWindow
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return NewIPRateLimiterWithMaxEntries(limit, window, 0)
}

// NewIPRateLimiterWithMaxEntries bounds how many client windows are tracked.
// When the table is full, expired windows are dropped first and the whole
// table is reset if that is not enough.
func NewIPRateLimiterWithMaxEntries(limit int, window time.Duration, maxEntries int) *IPRateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPRateLimiter{
		limit:      limit,
		window:     window,
		maxEntries: maxEntries,
		windows:    map[string]rateWindow{},
	}
}

func (rl *IPRateLimiter) Allow(key string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.windows[key]
	if !ok || !entry.endsAt.After(now) {
		if !ok && rl.maxEntries > 0 && len(rl.windows) >= rl.maxEntries {
			rl.evict(now)
		}
		entry = rateWindow{endsAt: now.Add(rl.window)}
	}
	entry.count++
	rl.windows[key] = entry
	return entry.count <= rl.limit
}

func (rl *IPRateLimiter) evict(now time.Time) {
	for key, entry := range rl.windows {
		if !entry.endsAt.After(now) {
			delete(rl.windows, key)
		}
	}
	if len(rl.windows) >= rl.maxEntries {
		rl.windows = make(map[string]rateWindow, rl.maxEntries)
	}
}

func (rl *IPRateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

func (rl *IPRateLimiter) Middleware(message string) func(http.Handler) http.Handler {
	return limitRequests(message, rl.window, func(r *http.Request) bool {
		return rl.Allow(clientIP(r.RemoteAddr))
	})
}

// limitRequests answers 429 with Retry-After set to the window length when
// allow refuses the request.
func limitRequests(message string, window time.Duration, allow func(r *http.Request) bool) func(http.Handler) http.Handler {
	if message == "" {
		message = "Limite de requisições excedido"
	}
	refused := rejection{
		status:     http.StatusTooManyRequests,
		code:       "rate_limited",
		message:    message,
		retryAfter: window,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r) {
				refused.write(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
